// Package service exposes the reactive engine behind a narrow interface for
// transport handlers, the way the teacher's delivery service exposed its
// registry hub to gRPC/websocket handlers.
package service

import (
	"github.com/sheetcore/reactive-sheets/internal/domain/value"
	"github.com/sheetcore/reactive-sheets/internal/engine"
)

// Sheet is the primary interface for connection workers (internal/server).
type Sheet interface {
	// SetCell runs the set pipeline for id against formula.
	SetCell(id, formula string)
	// GetCell runs the get pipeline for id.
	GetCell(id string) value.Value
}

// SheetService adapts an *engine.Engine to the Sheet interface.
type SheetService struct {
	engine *engine.Engine
}

// NewSheetService returns a production-ready Sheet backed by engine.
func NewSheetService(e *engine.Engine) *SheetService {
	return &SheetService{engine: e}
}

func (s *SheetService) SetCell(id, formula string) {
	s.engine.Set(id, formula)
}

func (s *SheetService) GetCell(id string) value.Value {
	return s.engine.Get(id)
}
