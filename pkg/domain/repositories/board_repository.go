package repositories

import "github.com/vsinha/lineplan/pkg/domain/entities"

// BoardRepository holds the current planning board snapshot.
// Save must replace the whole snapshot atomically: readers see either the
// previous board or the next one, never a mix.
type BoardRepository interface {
	Load() (*entities.Board, error)
	Save(board *entities.Board) error
}
