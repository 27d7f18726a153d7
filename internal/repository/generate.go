package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"fichaje/internal/model"
	"fichaje/storage/database"
)

// ========== Profile ==========

// ProfileQuerier consultas sobre perfiles de empleados.
type ProfileQuerier interface {
	// GetByEmail busca el perfil por email (login)
	//
	// SELECT * FROM @@table WHERE email = @email LIMIT 1
	GetByEmail(email string) (*gen.T, error)

	// GetByPublicID busca el perfil por el id público del token
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetByID busca el perfil por clave primaria
	//
	// SELECT * FROM @@table WHERE id = @id LIMIT 1
	GetByID(id int64) (*gen.T, error)

	// ListByRole lista perfiles por rol
	//
	// SELECT * FROM @@table
	// WHERE role = @role
	// ORDER BY full_name ASC
	ListByRole(role string) ([]*gen.T, error)
}

// ========== TimeEntry ==========

// TimeEntryQuerier consultas sobre fichajes.
type TimeEntryQuerier interface {
	// ListRecentByUser los últimos fichajes del usuario, más antiguos primero
	//
	// SELECT * FROM (
	//   SELECT * FROM @@table
	//   WHERE user_id = @userID
	//   ORDER BY timestamp DESC
	//   LIMIT @limit
	// ) sub ORDER BY sub.timestamp ASC
	ListRecentByUser(userID int64, limit int) ([]*gen.T, error)

	// ListByUserAndRange fichajes del usuario en [from, to)
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND timestamp >= @from AND timestamp < @to
	// ORDER BY timestamp ASC
	ListByUserAndRange(userID int64, from, to string) ([]*gen.T, error)

	// ListByRange fichajes de toda la plantilla en [from, to)
	//
	// SELECT * FROM @@table
	// WHERE timestamp >= @from AND timestamp < @to
	//   {{if userID > 0}}
	//   AND user_id = @userID
	//   {{end}}
	// ORDER BY timestamp DESC
	// LIMIT @limit
	ListByRange(from, to string, userID int64, limit int) ([]*gen.T, error)

	// CountBySource estadística por origen (user, auto_close)
	//
	// SELECT source, COUNT(*) as count
	// FROM @@table
	// GROUP BY source
	CountBySource() ([]gen.M, error)
}

// ========== NotificationTask ==========

// NotificationTaskQuerier consultas sobre avisos entregados.
type NotificationTaskQuerier interface {
	// GetByUserAndDay el aviso de una categoría programado en [from, to)
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID AND category = @category
	//   AND scheduled_at >= @from AND scheduled_at < @to
	// LIMIT 1
	GetByUserAndDay(userID int64, category string, from, to string) (*gen.T, error)

	// ListByUser avisos del usuario, más recientes primero
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	// ORDER BY created_at DESC
	// LIMIT @limit
	ListByUser(userID int64, limit int) ([]*gen.T, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// la migración garantiza que las tablas existen antes de generar
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query",
		ModelPkgPath:      "fichaje/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		&model.Profile{},
		&model.TimeEntry{},
		&model.NotificationTask{},
	)

	g.ApplyInterface(func(ProfileQuerier) {}, &model.Profile{})
	g.ApplyInterface(func(TimeEntryQuerier) {}, &model.TimeEntry{})
	g.ApplyInterface(func(NotificationTaskQuerier) {}, &model.NotificationTask{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
