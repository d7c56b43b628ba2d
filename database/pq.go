package database

import (
	"database/sql"
	"fmt"

	"github.com/edusphere/internship-api/config"
	_ "github.com/lib/pq"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// DB access
	GetDB() interface{} // Returns *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore
}

// PostgreSQLStore is the raw database/sql store. The GORM store owns
// migrations and all write paths; this one serves the public certificate
// verification lookup, a read-only hot path that skips the ORM.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQLStore{db: db}, nil
}

// Init is a no-op; schema migration is owned by the GORM store
func (s *PostgreSQLStore) Init() error {
	return nil
}

func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}

// CertificateVerification is the public lookup result for an issued
// certificate id
type CertificateVerification struct {
	CertificateID string `json:"certificate_id"`
	Type          string `json:"type"`
	StudentName   string `json:"student_name"`
	Email         string `json:"email"`
	College       string `json:"college"`
	Course        string `json:"course"`
}

// LookupCertificate resolves a certificate id to its public verification
// record. Returns sql.ErrNoRows when the id is unknown.
func (s *PostgreSQLStore) LookupCertificate(certificateID string) (*CertificateVerification, error) {
	query := `
		SELECT c.id, c.type, u.name, u.email, COALESCE(col.name, ''), co.title
		FROM certificates c
		JOIN users u ON u.id = c.user_id
		JOIN courses co ON co.id = c.course_id
		LEFT JOIN colleges col ON col.id = u.college_id
		WHERE c.id = $1 AND c.deleted_at IS NULL;
	`

	v := &CertificateVerification{}
	err := s.db.QueryRow(query, certificateID).Scan(
		&v.CertificateID,
		&v.Type,
		&v.StudentName,
		&v.Email,
		&v.College,
		&v.Course,
	)
	if err != nil {
		return nil, err
	}

	return v, nil
}
