package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run describes one persisted growth run.
type Run struct {
	RunID      string          `json:"run_id"`
	CreatedAt  int64           `json:"created_at"` // unix nanoseconds
	N1         int             `json:"n1"`
	N2         int             `json:"n2"`
	N3         int             `json:"n3"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	CellCount  int             `json:"cell_count"` // cells in the pool
	SkinCount  int             `json:"skin_count"`
	Note       string          `json:"note,omitempty"`
}

// SkinRecord is the stored summary of one skin.
type SkinRecord struct {
	RunID     string  `json:"run_id"`
	SkinIndex int     `json:"skin_index"`
	CellCount int     `json:"cell_count"`
	MeanFl    float64 `json:"mean_fl"`
}

// SkinStore provides persistence for growth runs.
type SkinStore struct {
	db *sql.DB
}

// NewSkinStore creates a new SkinStore.
func NewSkinStore(db *sql.DB) *SkinStore {
	return &SkinStore{db: db}
}

// SaveRun stores run with its skins and their cells in one transaction.
// If RunID is empty, a UUID is generated; CreatedAt defaults to now and
// CellCount and SkinCount are taken from pool and skins.
func (s *SkinStore) SaveRun(ctx context.Context, run *Run, pool *fault.Pool, skins []*fault.Skin) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	run.CellCount = pool.Len()
	run.SkinCount = len(skins)

	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save run: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fault_runs (
				run_id, created_at, n1, n2, n3, params_json, cell_count, skin_count, note
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CreatedAt, run.N1, run.N2, run.N3, params,
			run.CellCount, run.SkinCount, run.Note,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for k, sk := range skins {
			if err := insertSkin(ctx, tx, run.RunID, k, pool, sk); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func insertSkin(ctx context.Context, tx *sql.Tx, runID string, k int, pool *fault.Pool, sk *fault.Skin) error {
	local := make(map[fault.CellID]int, sk.Size())
	fls := make([]float64, sk.Size())
	for i, id := range sk.Cells {
		local[id] = i
		fls[i] = pool.Cell(id).Fl
	}
	meanFl := 0.0
	if len(fls) > 0 {
		meanFl = stat.Mean(fls, nil)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fault_skins (run_id, skin_index, cell_count, mean_fl)
		VALUES (?, ?, ?, ?)`,
		runID, k, sk.Size(), meanFl,
	); err != nil {
		return fmt.Errorf("insert skin %d: %w", k, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fault_cells (
			run_id, skin_index, cell_index, x1, x2, x3, fl, fp, ft, s1,
			nabor_above, nabor_below, nabor_left, nabor_right
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer stmt.Close()

	for i, id := range sk.Cells {
		c := pool.Cell(id)
		var nabors [4]int
		for _, d := range fault.Directions {
			nabors[d] = -1
			if j, ok := local[c.Nabor(d)]; ok {
				nabors[d] = j
			}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, k, i, c.X.X, c.X.Y, c.X.Z, c.Fl, c.Fp, c.Ft, c.S1,
			nabors[fault.Above], nabors[fault.Below], nabors[fault.Left], nabors[fault.Right],
		); err != nil {
			return fmt.Errorf("insert cell %d of skin %d: %w", i, k, err)
		}
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *SkinStore) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, n1, n2, n3, params_json, cell_count, skin_count, note
		FROM fault_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by id.
func (s *SkinStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, created_at, n1, n2, n3, params_json, cell_count, skin_count, note
		FROM fault_runs
		WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return r, err
}

// ListSkins returns the skin summaries of a run in skin order.
func (s *SkinStore) ListSkins(ctx context.Context, runID string) ([]*SkinRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, skin_index, cell_count, mean_fl
		FROM fault_skins
		WHERE run_id = ?
		ORDER BY skin_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query skins: %w", err)
	}
	defer rows.Close()

	var skins []*SkinRecord
	for rows.Next() {
		var sk SkinRecord
		if err := rows.Scan(&sk.RunID, &sk.SkinIndex, &sk.CellCount, &sk.MeanFl); err != nil {
			return nil, fmt.Errorf("scan skin row: %w", err)
		}
		skins = append(skins, &sk)
	}
	return skins, rows.Err()
}

// LoadSkinCells rebuilds one stored skin in a new pool. Cell handles are
// the stored cell indices and links are restored.
func (s *SkinStore) LoadSkinCells(ctx context.Context, runID string, skinIndex int) (*fault.Pool, *fault.Skin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cell_index, x1, x2, x3, fl, fp, ft, s1,
		       nabor_above, nabor_below, nabor_left, nabor_right
		FROM fault_cells
		WHERE run_id = ? AND skin_index = ?
		ORDER BY cell_index`, runID, skinIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	var (
		cells  []fault.Cell
		nabors [][4]int
	)
	for rows.Next() {
		var (
			index          int
			x1, x2, x3     float64
			fl, fp, ft, s1 float64
			n              [4]int
		)
		if err := rows.Scan(&index, &x1, &x2, &x3, &fl, &fp, &ft, &s1,
			&n[fault.Above], &n[fault.Below], &n[fault.Left], &n[fault.Right]); err != nil {
			return nil, nil, fmt.Errorf("scan cell row: %w", err)
		}
		if index != len(cells) {
			return nil, nil, fmt.Errorf("skin %d of run %s: cell index %d out of sequence", skinIndex, runID, index)
		}
		c := fault.NewCell(x1, x2, x3, fl, fp, ft)
		c.S1 = s1
		cells = append(cells, c)
		nabors = append(nabors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(cells) == 0 {
		if _, err := s.GetRun(ctx, runID); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("run %s has no skin %d", runID, skinIndex)
	}

	pool := fault.PoolFromCells(cells)
	skin := fault.NewSkin(fault.SkinID(skinIndex))
	for i := range cells {
		id := fault.CellID(i)
		skin.Add(pool, id)
		for _, d := range fault.Directions {
			if j := nabors[i][d]; j >= 0 && j < len(cells) {
				pool.Link(id, d, fault.CellID(j))
			}
		}
	}
	return pool, skin, nil
}

// DeleteRun removes a run with its skins and cells.
func (s *SkinStore) DeleteRun(ctx context.Context, runID string) error {
	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin delete run: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM fault_cells WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete cells: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM fault_skins WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete skins: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM fault_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
		}
		return tx.Commit()
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var params sql.NullString
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.N1, &r.N2, &r.N3, &params, &r.CellCount, &r.SkinCount, &r.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	return &r, nil
}
