package registers

import (
	"sync"
	"testing"

	"ecogw/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(Block{Name: "ecogaz", Start: 0, Size: 6}, Block{Name: "ecowatt", Start: 100, Size: 4})
	require.NoError(t, err)
	return tbl
}

func window(start uint16, vals ...uint16) map[uint16]models.RegisterValue {
	m := make(map[uint16]models.RegisterValue, len(vals))
	for i, v := range vals {
		m[start+uint16(i)] = models.Known(v)
	}
	return m
}

func TestTableStartsUnknown(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Read(0, 1)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	_, err = tbl.Read(100, 4)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestTableReadAfterWrite(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(0, 1, 2, 3, 4, 0, 0)))

	got, err := tbl.Read(0, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3, 4, 0, 0}, got)

	got, err = tbl.Read(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 4}, got)
}

func TestTableReadOutsideBlocks(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(0, 1, 1, 1, 1, 1, 1)))

	// 6 is the first address after the ecogaz block
	_, err := tbl.Read(0, 7)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	_, err = tbl.Read(50, 1)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	_, err = tbl.Read(0, 0)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	_, err = tbl.Read(65535, 2)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestTableExplicitUnknown(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(100, 1, 2, 3, 1)))
	require.NoError(t, tbl.WriteBatch(map[uint16]models.RegisterValue{102: models.Unknown()}))

	_, err := tbl.Read(100, 4)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	got, err := tbl.Read(100, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, got)
}

func TestTableWriteBatchLeavesOthersUntouched(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(0, 4, 4, 4, 4, 4, 4)))
	require.NoError(t, tbl.WriteBatch(window(1, 2)))

	got, err := tbl.Read(0, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint16{4, 2, 4, 4, 4, 4}, got)
}

func TestTableWriteBatchRejectsForeignAddress(t *testing.T) {
	tbl := newTestTable(t)
	batch := window(0, 1, 1)
	batch[200] = models.Known(3)

	require.Error(t, tbl.WriteBatch(batch))
	_, err := tbl.Read(0, 1)
	assert.ErrorIs(t, err, models.ErrUnavailable, "rejected batch must not be partially applied")
}

func TestNewTableRejectsOverlap(t *testing.T) {
	_, err := NewTable(Block{Name: "a", Start: 0, Size: 6}, Block{Name: "b", Start: 5, Size: 2})
	require.Error(t, err)

	_, err = NewTable(Block{Name: "a", Start: 65534, Size: 4})
	require.Error(t, err)

	_, err = NewTable(Block{Name: "a", Start: 0, Size: 0})
	require.Error(t, err)
}

func TestTableSnapshot(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(100, 3)))

	snap := tbl.Snapshot()
	require.Len(t, snap, 10)
	assert.Equal(t, uint16(0), snap[0].Address)
	assert.False(t, snap[0].Known)
	assert.Equal(t, Entry{Address: 100, Value: 3, Known: true}, snap[6])
}

// Writers alternate between two uniform batches; a reader must always see one of
// them entirely.
func TestTableBatchAtomicity(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.WriteBatch(window(0, 1, 1, 1, 1, 1, 1)))

	const rounds = 2000
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				v := uint16(1 + (i+w)%2*2) // 1 or 3
				_ = tbl.WriteBatch(window(0, v, v, v, v, v, v))
			}
		}(w)
	}

	mixed := make(chan []uint16, 1)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				got, err := tbl.Read(0, 6)
				if err != nil {
					continue
				}
				for _, v := range got[1:] {
					if v != got[0] {
						select {
						case mixed <- got:
						default:
						}
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	select {
	case got := <-mixed:
		t.Fatalf("read observed a mix of two batches: %v", got)
	default:
	}
}
