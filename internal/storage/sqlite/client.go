package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/pkg/logger"
)

var ErrDuplicateUsername = errors.New("username already registered")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		adults INTEGER NOT NULL DEFAULT 0,
		children INTEGER NOT NULL DEFAULT 0,
		infants INTEGER NOT NULL DEFAULT 0,
		elderly INTEGER NOT NULL DEFAULT 0,
		has_pet INTEGER NOT NULL DEFAULT 0,
		address TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS product_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		composition_hash TEXT NOT NULL,
		product_data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_product_lists_key ON product_lists(user_id, composition_hash, created_at);

	CREATE TABLE IF NOT EXISTS quiz_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		score INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results(user_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateUser(ctx context.Context, username, passwordHash string, profile models.HouseholdProfile) (int64, error) {
	query := `
		INSERT INTO users (username, password, adults, children, infants, elderly, has_pet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.ExecContext(ctx, query,
		username,
		passwordHash,
		profile.Adults,
		profile.Children,
		profile.Infants,
		profile.Elderly,
		boolToInt(profile.HasPet),
		time.Now().Unix(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}

	logger.Info("User created", zap.Int64("user_id", id), zap.String("username", username))
	return id, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.getUser(ctx, "username = ?", username)
}

func (c *Client) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return c.getUser(ctx, "id = ?", id)
}

func (c *Client) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, username, password, adults, children, infants, elderly, has_pet, address, points, created_at
		FROM users WHERE ` + where

	var u models.User
	var hasPet int
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.Adults,
		&u.Children,
		&u.Infants,
		&u.Elderly,
		&hasPet,
		&u.Address,
		&u.Points,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.HasPet = hasPet != 0
	u.CreatedAt = time.Unix(createdAt, 0)

	return &u, nil
}

func (c *Client) UpdateHousehold(ctx context.Context, userID int64, profile models.HouseholdProfile) error {
	query := `UPDATE users SET adults = ?, children = ?, infants = ?, elderly = ?, has_pet = ? WHERE id = ?`

	_, err := c.db.ExecContext(ctx, query,
		profile.Adults,
		profile.Children,
		profile.Infants,
		profile.Elderly,
		boolToInt(profile.HasPet),
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update household: %w", err)
	}

	logger.Info("Household updated", zap.Int64("user_id", userID))
	return nil
}

// GetLatestProductList returns the newest cached list for the
// (user, composition hash) key, or (nil, nil) when no row matches.
// Absence is not an error.
func (c *Client) GetLatestProductList(ctx context.Context, userID int64, compositionHash string) (*models.CachedProductList, error) {
	query := `
		SELECT id, user_id, composition_hash, product_data, created_at
		FROM product_lists
		WHERE user_id = ? AND composition_hash = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var list models.CachedProductList
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, userID, compositionHash).Scan(
		&list.ID,
		&list.UserID,
		&list.CompositionHash,
		&list.ProductData,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product list: %w", err)
	}

	list.CreatedAt = time.Unix(createdAt, 0)
	return &list, nil
}

// InsertProductList appends a new cache row. Prior rows for the same key are
// shadowed by the newer created_at, never overwritten.
func (c *Client) InsertProductList(ctx context.Context, userID int64, compositionHash, productData string) error {
	query := `INSERT INTO product_lists (user_id, composition_hash, product_data, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, query, userID, compositionHash, productData, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert product list: %w", err)
	}

	logger.Debug("Product list cached",
		zap.Int64("user_id", userID),
		zap.String("composition_hash", compositionHash),
	)
	return nil
}

func (c *Client) InsertQuizResult(ctx context.Context, result *models.QuizResult) error {
	query := `INSERT INTO quiz_results (user_id, score, total_questions, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, query,
		result.UserID,
		result.Score,
		result.TotalQuestions,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz result: %w", err)
	}

	logger.Info("Quiz result recorded",
		zap.Int64("user_id", result.UserID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)
	return nil
}

func (c *Client) AddPoints(ctx context.Context, userID int64, delta int) error {
	query := `UPDATE users SET points = points + ? WHERE id = ?`

	_, err := c.db.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
