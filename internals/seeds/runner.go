package seeds

import (
	"gorm.io/gorm"

	classes "kelasku_backend/internals/seeds/school/classes"
	students "kelasku_backend/internals/seeds/school/students"
	teachers "kelasku_backend/internals/seeds/school/teachers"
)

// RunAllSeeds mengisi data dev: direktori guru, kelas, lalu siswa.
// Urutan penting (siswa butuh kelas, login guru butuh baris directory).
func RunAllSeeds(db *gorm.DB) {
	teachers.SeedTeachersFromJSON(db, "internals/seeds/school/teachers/data_teachers.json")
	classes.SeedClassesFromJSON(db, "internals/seeds/school/classes/data_classes.json")
	students.SeedStudentsFromJSON(db, "internals/seeds/school/students/data_students.json")
}
