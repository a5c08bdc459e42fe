package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_documents.sql
var createDocumentsSQL string

//go:embed 0002_create_quizzes.sql
var createQuizzesSQL string

//go:embed 0003_create_results.sql
var createResultsSQL string

var Migrations = migrate.NewMigrations()
