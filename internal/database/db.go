package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

var DB *sql.DB

func InitDB() {
	// .env is optional in deployed environments where config comes from the
	// process environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatal("Database connection is not active:", err)
	}

	fmt.Println("Database connected successfully!")
}

// GetSqlQueryRow runs query and returns the first row as a column map.
// []byte columns are converted to strings.
func GetSqlQueryRow(query string, args ...interface{}) (map[string]interface{}, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		result := make(map[string]interface{})
		for i, col := range columns {
			result[col] = values[i]
			if b, ok := values[i].([]byte); ok {
				result[col] = string(b)
			}
		}
		return result, nil
	}

	return nil, sql.ErrNoRows
}

// GetSqlQueryRows runs query and returns all rows as column maps.
func GetSqlQueryRows(query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	var result []map[string]interface{}
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func SendSqlStatement(query string, args ...interface{}) error {
	_, err := DB.Exec(query, args...)
	return err
}
