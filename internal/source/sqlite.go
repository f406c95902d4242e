package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"

	_ "modernc.org/sqlite"

	"github.com/tellus3d/tellus/pkg/geo"
)

// TileStore is a SQLite-backed tile pyramid using the MBTiles-style
// (zoom_level, tile_column, tile_row, tile_data) schema. Rows are
// stored in XYZ orientation (row 0 at the north), matching TileKey.
//
// *sql.DB is safe for concurrent use, so a TileStore may serve
// parallel tile-model construction without extra locking.
type TileStore struct {
	db   *sql.DB
	path string
}

const tileStoreSchema = `
CREATE TABLE IF NOT EXISTS metadata (
	name  TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tiles (
	zoom_level  INTEGER NOT NULL,
	tile_column INTEGER NOT NULL,
	tile_row    INTEGER NOT NULL,
	tile_data   BLOB NOT NULL,
	PRIMARY KEY (zoom_level, tile_column, tile_row)
);
`

// OpenTileStore opens (creating if needed) a tile store at path.
func OpenTileStore(path string) (*TileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening tile store %s: %w", path, err)
	}
	if _, err := db.Exec(tileStoreSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing tile store %s: %w", path, err)
	}
	return &TileStore{db: db, path: path}, nil
}

// Close releases the underlying database.
func (s *TileStore) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the store.
func (s *TileStore) Path() string {
	return s.path
}

// SetMetadata stores a metadata key/value pair.
func (s *TileStore) SetMetadata(name, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value)
	return err
}

// Metadata returns a metadata value, or "" if absent.
func (s *TileStore) Metadata(name string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// ReadTile returns the raw payload for a key, or ErrNoData.
func (s *TileStore) ReadTile(ctx context.Context, key geo.TileKey) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		key.Level, key.X, key.Y).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %s: %w", key, err)
	}
	return data, nil
}

// WriteTile stores (or replaces) the payload for a key.
func (s *TileStore) WriteTile(ctx context.Context, key geo.TileKey, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(zoom_level, tile_column, tile_row) DO UPDATE SET tile_data = excluded.tile_data`,
		key.Level, key.X, key.Y, data)
	if err != nil {
		return fmt.Errorf("writing tile %s: %w", key, err)
	}
	return nil
}

// TileCount returns the number of stored tiles.
func (s *TileStore) TileCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiles`).Scan(&n)
	return n, err
}

// StoreImageSource adapts a TileStore into an ImageSource.
type StoreImageSource struct {
	store *TileStore
}

// NewStoreImageSource wraps a tile store as an image source.
func NewStoreImageSource(store *TileStore) *StoreImageSource {
	return &StoreImageSource{store: store}
}

// FetchImage implements ImageSource.
func (s *StoreImageSource) FetchImage(ctx context.Context, key geo.TileKey) (image.Image, error) {
	data, err := s.store.ReadTile(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}

// StoreElevationSource adapts a TileStore into an ElevationSource.
type StoreElevationSource struct {
	store *TileStore
}

// NewStoreElevationSource wraps a tile store as an elevation source.
func NewStoreElevationSource(store *TileStore) *StoreElevationSource {
	return &StoreElevationSource{store: store}
}

// FetchHeightfield implements ElevationSource.
func (s *StoreElevationSource) FetchHeightfield(ctx context.Context, key geo.TileKey) (*geo.Heightfield, error) {
	data, err := s.store.ReadTile(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeHeightfield(data)
}
