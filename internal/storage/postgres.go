package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/vithika-cyber/calorie-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db            *sql.DB
	retainedTurns int
}

func NewPostgresStorage(config DatabaseConfig, retainedTurns int) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	if retainedTurns <= 0 {
		retainedTurns = 10
	}
	storage := &PostgresStorage{db: db, retainedTurns: retainedTurns}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetOrCreateUser(ctx context.Context, userID, chatID int64) (*models.UserProfile, error) {
	user, err := s.getUser(ctx, userID, chatID)
	if err == nil {
		return user, nil
	}
	if _, ok := err.(*NotFoundError); !ok {
		return nil, err
	}

	user = &models.UserProfile{
		UserID:      userID,
		ChatID:      chatID,
		Preferences: map[string]string{},
	}
	query := `
		INSERT INTO user_profiles (user_id, chat_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, chat_id) DO UPDATE SET updated_at = now()
		RETURNING created_at, updated_at`
	if err := s.db.QueryRowContext(ctx, query, userID, chatID).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return user, nil
}

func (s *PostgresStorage) getUser(ctx context.Context, userID, chatID int64) (*models.UserProfile, error) {
	query := `
		SELECT user_id, chat_id, age, gender, weight_kg, target_weight_kg, height_cm,
		       activity_level, goal, daily_calorie_goal, preferences, onboarded_at,
		       created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1 AND chat_id = $2`

	user := &models.UserProfile{}
	var prefs []byte
	var onboardedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID, chatID).Scan(
		&user.UserID,
		&user.ChatID,
		&user.Age,
		&user.Gender,
		&user.WeightKg,
		&user.TargetWeightKg,
		&user.HeightCm,
		&user.ActivityLevel,
		&user.Goal,
		&user.DailyCalorieGoal,
		&prefs,
		&onboardedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{What: "user"}
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %v", err)
	}

	if onboardedAt.Valid {
		t := onboardedAt.Time
		user.OnboardedAt = &t
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return nil, fmt.Errorf("error decoding preferences: %v", err)
		}
	}
	return user, nil
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, user *models.UserProfile) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("error encoding preferences: %v", err)
	}

	query := `
		UPDATE user_profiles
		SET age = $3, gender = $4, weight_kg = $5, target_weight_kg = $6,
		    height_cm = $7, activity_level = $8, goal = $9,
		    daily_calorie_goal = $10, preferences = $11, onboarded_at = $12,
		    updated_at = now()
		WHERE user_id = $1 AND chat_id = $2`

	result, err := s.db.ExecContext(ctx, query,
		user.UserID, user.ChatID, user.Age, user.Gender, user.WeightKg,
		user.TargetWeightKg, user.HeightCm, user.ActivityLevel, user.Goal,
		user.DailyCalorieGoal, prefs, user.OnboardedAt)
	if err != nil {
		return fmt.Errorf("error updating user: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rows == 0 {
		return &NotFoundError{What: "user"}
	}
	return nil
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, userID, chatID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM food_logs WHERE user_id = $1`,
		`DELETE FROM conversation_turns WHERE user_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("error deleting user data: %v", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_profiles WHERE user_id = $1 AND chat_id = $2`, userID, chatID); err != nil {
		return fmt.Errorf("error deleting user: %v", err)
	}

	return tx.Commit()
}

func (s *PostgresStorage) CreateFoodLog(ctx context.Context, entry *models.FoodLogEntry) error {
	items, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("error encoding items: %v", err)
	}

	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}

	query := `
		INSERT INTO food_logs (user_id, chat_id, logged_at, meal_type, raw_text, items,
		                       total_calories, total_protein, total_carbs, total_fat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err = s.db.QueryRowContext(ctx, query,
		entry.UserID, entry.ChatID, entry.LoggedAt, entry.MealType, entry.RawText,
		items, entry.Totals.Calories, entry.Totals.Protein, entry.Totals.Carbs,
		entry.Totals.Fat).Scan(&id)
	if err != nil {
		return fmt.Errorf("error creating food log: %v", err)
	}

	entry.ID = strconv.FormatInt(id, 10)
	return nil
}

func (s *PostgresStorage) FoodLogsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.FoodLogEntry, error) {
	query := `
		SELECT id, user_id, chat_id, logged_at, meal_type, raw_text, items,
		       total_calories, total_protein, total_carbs, total_fat
		FROM food_logs
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying food logs: %v", err)
	}
	defer rows.Close()

	var entries []*models.FoodLogEntry
	for rows.Next() {
		entry := &models.FoodLogEntry{}
		var id int64
		var items []byte
		err := rows.Scan(
			&id,
			&entry.UserID,
			&entry.ChatID,
			&entry.LoggedAt,
			&entry.MealType,
			&entry.RawText,
			&items,
			&entry.Totals.Calories,
			&entry.Totals.Protein,
			&entry.Totals.Carbs,
			&entry.Totals.Fat,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning food log: %v", err)
		}
		if err := json.Unmarshal(items, &entry.Items); err != nil {
			return nil, fmt.Errorf("error decoding items: %v", err)
		}
		entry.ID = strconv.FormatInt(id, 10)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *PostgresStorage) DeleteLastFoodLog(ctx context.Context, userID int64) (bool, error) {
	query := `
		DELETE FROM food_logs
		WHERE id = (
			SELECT id FROM food_logs WHERE user_id = $1 ORDER BY logged_at DESC, id DESC LIMIT 1
		)`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("error deleting food log: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %v", err)
	}
	return rows > 0, nil
}

func (s *PostgresStorage) AppendTurn(ctx context.Context, turn *models.ConversationTurn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversation_turns (user_id, role, text, created_at) VALUES ($1, $2, $3, $4)`,
		turn.UserID, turn.Role, turn.Text, createdAt); err != nil {
		return fmt.Errorf("error inserting turn: %v", err)
	}

	// Prune beyond the retention bound, oldest first.
	prune := `
		DELETE FROM conversation_turns
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM conversation_turns WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		)`
	if _, err := tx.ExecContext(ctx, prune, turn.UserID, s.retainedTurns); err != nil {
		return fmt.Errorf("error pruning turns: %v", err)
	}

	return tx.Commit()
}

func (s *PostgresStorage) RecentTurns(ctx context.Context, userID int64, limit int) ([]models.ConversationTurn, error) {
	query := `
		SELECT user_id, role, text, created_at
		FROM (
			SELECT id, user_id, role, text, created_at
			FROM conversation_turns
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %v", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		if err := rows.Scan(&turn.UserID, &turn.Role, &turn.Text, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning turn: %v", err)
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

func (s *PostgresStorage) GetCachedNutrition(ctx context.Context, key string) (*models.FoodRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM nutrition_cache WHERE key = $1`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error querying nutrition cache: %v", err)
	}

	rec := &models.FoodRecord{}
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, false, fmt.Errorf("error decoding cached record: %v", err)
	}
	return rec, true, nil
}

func (s *PostgresStorage) PutCachedNutrition(ctx context.Context, key string, rec *models.FoodRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding record: %v", err)
	}

	// A fresh lookup supersedes by key; entries are never updated in place
	// with partial data.
	query := `
		INSERT INTO nutrition_cache (key, record)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET record = EXCLUDED.record, created_at = now()`
	if _, err := s.db.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("error writing nutrition cache: %v", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
