package repositories

import (
	"github.com/jmwangi/bursaryhub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        UserRepository
	StudentRepository     StudentRepository
	TokenRepository       TokenRepository
	GeographyRepository   GeographyRepository
	ApplicationRepository ApplicationRepository
	OfficerRepository     OfficerRepository
	SiteProfileRepository SiteProfileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(database.Pool),
		StudentRepository:     NewStudentRepository(database),
		TokenRepository:       NewTokenRepository(database.Pool),
		GeographyRepository:   NewGeographyRepository(database.Pool),
		ApplicationRepository: NewApplicationRepository(database),
		OfficerRepository:     NewOfficerRepository(database),
		SiteProfileRepository: NewSiteProfileRepository(database.Pool),
	}
}
