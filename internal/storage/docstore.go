package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"dublinbikes-api/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// stationDocument is one station stored as a JSON document, keyed by the
// string station id and partitioned by station number.
type stationDocument struct {
	bun.BaseModel `bun:"table:station_documents,alias:sd"`

	ID     string               `bun:"id,pk"`
	Number int                  `bun:"number,notnull"` // partition key
	Body   models.StationRecord `bun:"body,notnull"`
}

func newDocument(s models.Station) *stationDocument {
	return &stationDocument{
		ID:     s.ID(),
		Number: s.Number,
		Body:   models.RecordFromStation(s),
	}
}

// DocStore keeps stations in a document table reached through bun.
// Every call goes to the database, so writes are durable immediately.
type DocStore struct {
	db bun.IDB
}

func NewDocStore(db bun.IDB) *DocStore {
	return &DocStore{db: db}
}

// CreateSchema creates the document table and its partition index if missing.
func (d *DocStore) CreateSchema(ctx context.Context) error {
	if _, err := d.db.NewCreateTable().
		Model((*stationDocument)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create station_documents: %w", err)
	}

	if _, err := d.db.NewCreateIndex().
		Model((*stationDocument)(nil)).
		Index("idx_station_documents_number").
		Column("number").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create station_documents index: %w", err)
	}
	return nil
}

// List reads the entire collection; filters are never pushed down.
func (d *DocStore) List(ctx context.Context) ([]models.Station, error) {
	var docs []stationDocument
	if err := d.db.NewSelect().
		Model(&docs).
		Order("number ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list station documents: %w", err)
	}

	stations := make([]models.Station, 0, len(docs))
	for _, doc := range docs {
		stations = append(stations, doc.Body.ToStation())
	}
	return stations, nil
}

func (d *DocStore) Get(ctx context.Context, number int) (models.Station, bool, error) {
	doc := new(stationDocument)
	err := d.db.NewSelect().
		Model(doc).
		Where("id = ?", strconv.Itoa(number)).
		Where("number = ?", number).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Station{}, false, nil
	}
	if err != nil {
		return models.Station{}, false, fmt.Errorf("get station %d: %w", number, err)
	}
	return doc.Body.ToStation(), true, nil
}

func (d *DocStore) Create(ctx context.Context, station models.Station) error {
	station.Normalize()

	res, err := d.db.NewInsert().
		Model(newDocument(station)).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create station %d: %w", station.Number, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create station %d: %w", station.Number, err)
	}
	if n == 0 {
		return fmt.Errorf("station %d: %w", station.Number, ErrDuplicateStation)
	}
	return nil
}

func (d *DocStore) Update(ctx context.Context, number int, station models.Station) (bool, error) {
	station.Number = number
	station.Normalize()

	res, err := d.db.NewUpdate().
		Model(newDocument(station)).
		Column("body").
		WherePK().
		Where("number = ?", number).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update station %d: %w", number, err)
	}
	return affected(res)
}

func (d *DocStore) Delete(ctx context.Context, number int) (bool, error) {
	res, err := d.db.NewDelete().
		Model((*stationDocument)(nil)).
		Where("id = ?", strconv.Itoa(number)).
		Where("number = ?", number).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete station %d: %w", number, err)
	}
	return affected(res)
}

func (d *DocStore) Summary(ctx context.Context) (models.Summary, error) {
	stations, err := d.List(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(stations), nil
}

// Seed upserts every station document.
func (d *DocStore) Seed(ctx context.Context, stations []models.Station) (int, error) {
	if len(stations) == 0 {
		return 0, nil
	}

	stations = dedupeByNumber(stations)
	docs := make([]*stationDocument, 0, len(stations))
	for _, s := range stations {
		s.Normalize()
		docs = append(docs, newDocument(s))
	}

	if _, err := d.db.NewInsert().
		Model(&docs).
		On("CONFLICT (id) DO UPDATE").
		Set("number = EXCLUDED.number").
		Set("body = EXCLUDED.body").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("seed station documents: %w", err)
	}
	return len(docs), nil
}

// Mutate runs the whole pass in one transaction. On Postgres the documents are
// read with SELECT ... FOR UPDATE so concurrent writers wait for the commit;
// sqlite serialises writers on its own.
func (d *DocStore) Mutate(ctx context.Context, fn func(*models.Station)) (int, error) {
	mutated := 0

	err := d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var docs []stationDocument
		q := tx.NewSelect().
			Model(&docs).
			Order("number ASC")
		if tx.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			return fmt.Errorf("lock station documents: %w", err)
		}

		for _, doc := range docs {
			s := doc.Body.ToStation()
			fn(&s)
			s.Number = doc.Number
			s.Normalize()

			if _, err := tx.NewUpdate().
				Model(newDocument(s)).
				Column("body").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("mutate station %d: %w", doc.Number, err)
			}
			mutated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return mutated, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
