package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report

The report lists database columns that no field of the corresponding model maps to.
It runs as part of `portfolio gen-models`, or alone with `portfolio gen-models --report-only`.

Example output:
	table=projects mismatched=[legacy_tags]
	table=leads    mismatched=[]
*/

// tableModels maps every persisted table to its model.
func tableModels() map[string]interface{} {
	return map[string]interface{}{
		"projects":    Project{},
		"leads":       Lead{},
		"settings":    Settings{},
		"credentials": Credentials{},
	}
}

// GenerateModels migrates the schema and writes typed gorm/gen query helpers to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("checking database connection: %w", err)
	}
	if outPath == "" {
		outPath = "./generated"
	}

	// Verbose logging for migration
	db = db.Session(&gorm.Session{
		Logger:                 db.Logger.LogMode(logger.Info),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		Project{},
		Lead{},
		Settings{},
		Credentials{},
	)

	log.Info().Msg("migrating models")
	if err := db.AutoMigrate(&Project{}, &Lead{}, &Settings{}, &Credentials{}); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}

	if _, err := ColumnMismatchReport(db); err != nil {
		return err
	}

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("model generation complete")
	return nil
}

// ColumnMismatchReport returns, per existing table, the database columns no model field
// maps to. Tables that do not exist yet are skipped.
func ColumnMismatchReport(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string)
	total := 0

	for tableName, model := range tableModels() {
		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				log.Info().Str("table", tableName).Msg("table does not exist yet (will be created during migration)")
				continue
			}
			return nil, err
		}

		modelFields, err := modelColumns(model)
		if err != nil {
			return nil, err
		}

		mismatches := findColumnMismatches(dbColumns, modelFields)
		report[tableName] = mismatches
		total += len(mismatches)

		log.Info().Str("table", tableName).Strs("mismatched", mismatches).Msg("column report")
	}

	log.Info().Int("total", total).Msg("column mismatch report complete")
	return report, nil
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`

	err := db.Raw(query, tableName).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	if len(columns) == 0 {
		var tableExists bool
		tableQuery := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = CURRENT_SCHEMA()
				AND table_name = ?
			)
		`
		if err := db.Raw(tableQuery, tableName).Scan(&tableExists).Error; err != nil {
			return nil, fmt.Errorf("error checking if table %s exists: %w", tableName, err)
		}

		if !tableExists {
			return nil, fmt.Errorf("table %s does not exist", tableName)
		}
	}

	return columns, nil
}

// modelColumns lists the column names GORM derives for model.
func modelColumns(model interface{}) ([]string, error) {
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parsing model %T: %w", model, err)
	}
	columns := make([]string, 0, len(s.DBNames))
	columns = append(columns, s.DBNames...)
	sort.Strings(columns)
	return columns, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool)
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	mismatches := []string{}
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
