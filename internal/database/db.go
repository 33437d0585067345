package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the engine's tables when they do not exist yet and seeds
// the destination catalog. The UNIQUE key on check_ins.reservation_id is
// load-bearing: it is what makes check-in exactly-once enforceable at the
// storage layer.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS destinations (
			destination_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			region VARCHAR(128) NOT NULL,
			unit_price_cents INT UNSIGNED NOT NULL,
			slot_capacity INT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (destination_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS tour_slots (
			slot_id VARCHAR(96) NOT NULL,
			destination_id VARCHAR(64) NOT NULL,
			tour_date DATE NOT NULL,
			capacity INT NOT NULL,
			occupied INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (slot_id),
			KEY idx_slots_destination (destination_id),
			CONSTRAINT fk_slots_destination FOREIGN KEY (destination_id) REFERENCES destinations (destination_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS reservations (
			reservation_id CHAR(36) NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			slot_id VARCHAR(96) NOT NULL,
			destination_id VARCHAR(64) NOT NULL,
			pax INT NOT NULL,
			unit_price_cents INT UNSIGNED NOT NULL,
			total_price_cents INT UNSIGNED NOT NULL,
			state VARCHAR(24) NOT NULL,
			payment_method VARCHAR(32) NULL,
			payment_ref VARCHAR(64) NULL,
			confirmation_code VARCHAR(16) NULL,
			check_in_token VARCHAR(64) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (reservation_id),
			UNIQUE KEY uq_reservations_code (confirmation_code),
			KEY idx_reservations_user (user_id),
			KEY idx_reservations_slot (slot_id),
			CONSTRAINT fk_reservations_slot FOREIGN KEY (slot_id) REFERENCES tour_slots (slot_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS check_ins (
			check_in_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			reservation_id CHAR(36) NOT NULL,
			guide_id BIGINT UNSIGNED NOT NULL,
			checked_in_at DATETIME NOT NULL,
			status VARCHAR(16) NOT NULL,
			PRIMARY KEY (check_in_id),
			UNIQUE KEY uq_check_ins_reservation (reservation_id),
			CONSTRAINT fk_check_ins_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (reservation_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		// Seed catalog rows; INSERT IGNORE keeps reruns harmless.
		`INSERT IGNORE INTO destinations (destination_id, name, region, unit_price_cents, slot_capacity) VALUES
			('dest_001', 'Machu Picchu Full Day', 'Cusco', 35000, 15),
			('dest_002', 'Laguna Humantay', 'Cusco', 18000, 20),
			('dest_003', 'Islas Ballestas', 'Paracas', 12000, 30),
			('dest_004', 'Valle del Colca', 'Arequipa', 22000, 18)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
