package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"travelcopilot/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the database named by dbType in the config.
func Open(dbType string, cfg *config.Config) (*sql.DB, error) {
	dbCfg, ok := cfg.Databases[dbType]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", dbType)
	}

	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
			dbCfg.Params,
		)
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", dbType)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the required tables are present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS user_tokens (
				token TEXT PRIMARY KEY,
				user_id INTEGER NOT NULL,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_user_tokens_user ON user_tokens(user_id)`,
			`CREATE TABLE IF NOT EXISTS agents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL UNIQUE,
				name TEXT NOT NULL,
				agency_name TEXT NOT NULL DEFAULT '',
				code TEXT NOT NULL DEFAULT '',
				territory TEXT NOT NULL DEFAULT '',
				commission_rate REAL NOT NULL DEFAULT 0.05,
				created_at DATETIME NOT NULL,
				FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS customers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				preferences TEXT,
				past_trips TEXT,
				created_at DATETIME NOT NULL,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_customers_agent ON customers(agent_id)`,
			`CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id INTEGER NOT NULL,
				customer_id INTEGER NOT NULL,
				title TEXT NOT NULL,
				destination TEXT NOT NULL,
				start_date TEXT NOT NULL DEFAULT '',
				end_date TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'planning',
				total_cost REAL NOT NULL DEFAULT 0,
				itinerary TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				FOREIGN KEY(customer_id) REFERENCES customers(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_trips_agent ON trips(agent_id)`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id INTEGER NOT NULL,
				customer_id INTEGER NOT NULL,
				trip_id INTEGER NOT NULL,
				type TEXT NOT NULL,
				reference TEXT NOT NULL UNIQUE,
				status TEXT NOT NULL,
				payment_status TEXT NOT NULL DEFAULT 'pending',
				amount REAL NOT NULL DEFAULT 0,
				commission REAL NOT NULL DEFAULT 0,
				details TEXT,
				hold_expiry DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				FOREIGN KEY(customer_id) REFERENCES customers(id) ON DELETE CASCADE,
				FOREIGN KEY(trip_id) REFERENCES trips(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_agent ON bookings(agent_id)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_hold_expiry ON bookings(hold_expiry)`,
			`CREATE TABLE IF NOT EXISTS alerts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id INTEGER NOT NULL,
				type TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				priority TEXT NOT NULL DEFAULT 'normal',
				booking_id INTEGER,
				is_read INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				FOREIGN KEY(booking_id) REFERENCES bookings(id) ON DELETE SET NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_alerts_agent ON alerts(agent_id, is_read)`,
			`CREATE TABLE IF NOT EXISTS conversations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id INTEGER NOT NULL,
				customer_id INTEGER,
				trip_id INTEGER,
				context TEXT,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY(agent_id) REFERENCES agents(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_conversations_agent ON conversations(agent_id, is_active)`,
			`CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				conversation_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				role TEXT NOT NULL,
				content TEXT NOT NULL,
				is_voice INTEGER NOT NULL DEFAULT 0,
				metadata TEXT,
				created_at DATETIME NOT NULL,
				UNIQUE(conversation_id, position),
				FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS flights (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				airline TEXT NOT NULL,
				flight_number TEXT NOT NULL,
				origin TEXT NOT NULL DEFAULT '',
				destination TEXT NOT NULL DEFAULT '',
				departure_time TEXT NOT NULL,
				arrival_time TEXT NOT NULL,
				price INTEGER NOT NULL,
				stops INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS hotels (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				city TEXT NOT NULL DEFAULT '',
				price_per_night INTEGER NOT NULL,
				rating REAL NOT NULL
			)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				username VARCHAR(255) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS user_tokens (
				token VARCHAR(255) NOT NULL PRIMARY KEY,
				user_id BIGINT UNSIGNED NOT NULL,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				INDEX idx_user_tokens_user (user_id),
				CONSTRAINT fk_user_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS agents (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				user_id BIGINT UNSIGNED NOT NULL,
				name VARCHAR(255) NOT NULL,
				agency_name VARCHAR(255) NOT NULL DEFAULT '',
				code VARCHAR(100) NOT NULL DEFAULT '',
				territory VARCHAR(255) NOT NULL DEFAULT '',
				commission_rate DOUBLE NOT NULL DEFAULT 0.05,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				UNIQUE KEY uniq_agents_user (user_id),
				CONSTRAINT fk_agents_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS customers (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				agent_id BIGINT UNSIGNED NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL DEFAULT '',
				phone VARCHAR(100) NOT NULL DEFAULT '',
				preferences TEXT,
				past_trips TEXT,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_customers_agent (agent_id),
				CONSTRAINT fk_customers_agent FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS trips (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				agent_id BIGINT UNSIGNED NOT NULL,
				customer_id BIGINT UNSIGNED NOT NULL,
				title VARCHAR(255) NOT NULL,
				destination VARCHAR(255) NOT NULL,
				start_date VARCHAR(50) NOT NULL DEFAULT '',
				end_date VARCHAR(50) NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL DEFAULT 'planning',
				total_cost DOUBLE NOT NULL DEFAULT 0,
				itinerary MEDIUMTEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_trips_agent (agent_id),
				CONSTRAINT fk_trips_agent FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				CONSTRAINT fk_trips_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				agent_id BIGINT UNSIGNED NOT NULL,
				customer_id BIGINT UNSIGNED NOT NULL,
				trip_id BIGINT UNSIGNED NOT NULL,
				type VARCHAR(50) NOT NULL,
				reference VARCHAR(100) NOT NULL UNIQUE,
				status VARCHAR(50) NOT NULL,
				payment_status VARCHAR(50) NOT NULL DEFAULT 'pending',
				amount DOUBLE NOT NULL DEFAULT 0,
				commission DOUBLE NOT NULL DEFAULT 0,
				details MEDIUMTEXT,
				hold_expiry DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_bookings_agent (agent_id),
				INDEX idx_bookings_hold_expiry (hold_expiry),
				CONSTRAINT fk_bookings_agent FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE,
				CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS alerts (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				agent_id BIGINT UNSIGNED NOT NULL,
				type VARCHAR(50) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL,
				priority VARCHAR(50) NOT NULL DEFAULT 'normal',
				booking_id BIGINT UNSIGNED,
				is_read TINYINT(1) NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_alerts_agent (agent_id, is_read),
				CONSTRAINT fk_alerts_agent FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE,
				CONSTRAINT fk_alerts_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE SET NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS conversations (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				agent_id BIGINT UNSIGNED NOT NULL,
				customer_id BIGINT UNSIGNED,
				trip_id BIGINT UNSIGNED,
				context MEDIUMTEXT,
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_conversations_agent (agent_id, is_active),
				CONSTRAINT fk_conversations_agent FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS messages (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				conversation_id BIGINT UNSIGNED NOT NULL,
				position INT NOT NULL,
				role VARCHAR(50) NOT NULL,
				content MEDIUMTEXT NOT NULL,
				is_voice TINYINT(1) NOT NULL DEFAULT 0,
				metadata MEDIUMTEXT,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				UNIQUE KEY uniq_messages_position (conversation_id, position),
				CONSTRAINT fk_messages_conversation FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS flights (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				airline VARCHAR(255) NOT NULL,
				flight_number VARCHAR(50) NOT NULL,
				origin VARCHAR(255) NOT NULL DEFAULT '',
				destination VARCHAR(255) NOT NULL DEFAULT '',
				departure_time VARCHAR(20) NOT NULL,
				arrival_time VARCHAR(20) NOT NULL,
				price INT NOT NULL,
				stops INT NOT NULL DEFAULT 0,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS hotels (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				name VARCHAR(255) NOT NULL,
				city VARCHAR(255) NOT NULL DEFAULT '',
				price_per_night INT NOT NULL,
				rating DOUBLE NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}

// SeedInventory loads the built-in flight and hotel inventory when the
// tables are empty. Rows with an empty origin, destination, or city match
// any search.
func SeedInventory(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM flights`).Scan(&count); err != nil {
		return fmt.Errorf("count flights: %w", err)
	}
	if count == 0 {
		flights := []struct {
			airline, number, dep, arr string
			price, stops              int
		}{
			{"Air India", "AI101", "06:00", "08:30", 8500, 0},
			{"IndiGo", "6E202", "14:15", "16:45", 7200, 0},
			{"SpiceJet", "SG303", "20:30", "23:00", 6800, 0},
		}
		for _, f := range flights {
			if _, err := db.Exec(
				`INSERT INTO flights (airline, flight_number, origin, destination, departure_time, arrival_time, price, stops)
				 VALUES (?, ?, '', '', ?, ?, ?, ?)`,
				f.airline, f.number, f.dep, f.arr, f.price, f.stops,
			); err != nil {
				return fmt.Errorf("seed flights: %w", err)
			}
		}
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM hotels`).Scan(&count); err != nil {
		return fmt.Errorf("count hotels: %w", err)
	}
	if count == 0 {
		hotels := []struct {
			name   string
			price  int
			rating float64
		}{
			{"The Leela Palace", 12000, 4.8},
			{"Taj Hotel", 9500, 4.6},
		}
		for _, h := range hotels {
			if _, err := db.Exec(
				`INSERT INTO hotels (name, city, price_per_night, rating) VALUES (?, '', ?, ?)`,
				h.name, h.price, h.rating,
			); err != nil {
				return fmt.Errorf("seed hotels: %w", err)
			}
		}
	}
	return nil
}
