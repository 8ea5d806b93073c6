package controller

import (
	"kelasku_backend/internals/features/users/auth/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB   *gorm.DB
	Deps *service.Deps
}

func NewAuthController(db *gorm.DB, deps *service.Deps) *AuthController {
	return &AuthController{DB: db, Deps: deps}
}

func (ac *AuthController) LoginTeacher(c *fiber.Ctx) error {
	return service.LoginTeacher(ac.DB, ac.Deps, c)
}

func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	return service.LoginGoogle(ac.DB, ac.Deps, c)
}

func (ac *AuthController) LoginStudent(c *fiber.Ctx) error {
	return service.LoginStudent(ac.DB, ac.Deps, c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return service.Logout(ac.DB, ac.Deps, c)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return service.RefreshToken(ac.DB, ac.Deps, c)
}

func (ac *AuthController) CSRF(c *fiber.Ctx) error {
	return service.CSRF(c)
}
