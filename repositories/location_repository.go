package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrLocationNotFound     = errors.New("location not found")
	ErrLocationNameConflict = errors.New("location name is already in use within this tournament")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomNameConflict     = errors.New("room name is already in use within this location")
	ErrRoomAlreadyOccupied  = errors.New("room is already occupied")
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoomByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Room, error)
	ListRoomsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Room, error)
	// OccupyRoom flips is_occupied only when the room is currently free,
	// so two draws can never claim the same room.
	OccupyRoom(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	ReleaseRoom(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

type postgresLocationRepository struct {
	db *sql.DB
}

func NewPostgresLocationRepository(db *sql.DB) LocationRepository {
	return &postgresLocationRepository{db: db}
}

func (r *postgresLocationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLocationRepository) Create(ctx context.Context, l *models.Location) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (id, tournament_id, name, address, remarks) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.TournamentID, l.Name, l.Address, l.Remarks,
	)
	return r.handleLocationError(err)
}

func (r *postgresLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	l := &models.Location{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, name, address, remarks FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.TournamentID, &l.Name, &l.Address, &l.Remarks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to scan location %s: %w", id, err)
	}
	return l, nil
}

func (r *postgresLocationRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, name, address, remarks FROM locations WHERE tournament_id = $1 ORDER BY name ASC`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var l models.Location
		if scanErr := rows.Scan(&l.ID, &l.TournamentID, &l.Name, &l.Address, &l.Remarks); scanErr != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", scanErr)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *postgresLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLocationNotFound)
}

func (r *postgresLocationRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, location_id, name, remarks, is_occupied) VALUES ($1, $2, $3, $4, $5)`,
		room.ID, room.LocationID, room.Name, room.Remarks, room.IsOccupied,
	)
	return r.handleLocationError(err)
}

func (r *postgresLocationRepository) GetRoomByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Room, error) {
	executor := r.getExecutor(exec)
	room := &models.Room{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, location_id, name, remarks, is_occupied FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.LocationID, &room.Name, &room.Remarks, &room.IsOccupied)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to scan room %s: %w", id, err)
	}
	return room, nil
}

func (r *postgresLocationRepository) ListRoomsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, location_id, name, remarks, is_occupied FROM rooms WHERE location_id = $1 ORDER BY name ASC`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms for location %s: %w", locationID, err)
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		var room models.Room
		if scanErr := rows.Scan(&room.ID, &room.LocationID, &room.Name, &room.Remarks, &room.IsOccupied); scanErr != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", scanErr)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *postgresLocationRepository) OccupyRoom(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rooms SET is_occupied = TRUE WHERE id = $1 AND is_occupied = FALSE`, id,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the room does not exist or someone holds it already.
		if _, getErr := r.GetRoomByID(ctx, exec, id); getErr != nil {
			return getErr
		}
		return ErrRoomAlreadyOccupied
	}
	return nil
}

func (r *postgresLocationRepository) ReleaseRoom(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rooms SET is_occupied = FALSE WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

func (r *postgresLocationRepository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

func (r *postgresLocationRepository) handleLocationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "locations_tournament_id_name_key":
			return ErrLocationNameConflict
		case "rooms_location_id_name_key":
			return ErrRoomNameConflict
		}
	}
	return err
}
