package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/repositories"
)

// BoardRepository holds the current board snapshot in memory.
// Save swaps the whole snapshot, so a Load never sees half of a change.
type BoardRepository struct {
	board *entities.Board
	mutex sync.RWMutex
}

// NewBoardRepository creates a repository holding board
func NewBoardRepository(board *entities.Board) *BoardRepository {
	if board == nil {
		board = &entities.Board{}
	}
	return &BoardRepository{board: board}
}

// Verify interface compliance
var _ repositories.BoardRepository = (*BoardRepository)(nil)

// Load returns the current snapshot. Callers must treat it as read-only.
func (r *BoardRepository) Load() (*entities.Board, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.board, nil
}

// Save replaces the current snapshot
func (r *BoardRepository) Save(board *entities.Board) error {
	if board == nil {
		return fmt.Errorf("cannot save a nil board")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.board = board
	return nil
}
