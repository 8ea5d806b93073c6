package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"kelasku_backend/internals/configs"
)

// Origin frontend yang boleh membawa cookie auth. Tambahan origin
// (staging, preview) lewat env CORS_EXTRA_ORIGINS, dipisah koma.
var allowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://kelasku-web.vercel.app",
	"https://kelasku-web-production.up.railway.app",
}

func CorsMiddleware() fiber.Handler {
	origins := allowedOrigins
	if extra := strings.TrimSpace(configs.GetEnv("CORS_EXTRA_ORIGINS")); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-CSRF-Token",
		AllowCredentials: true,
	})
}
