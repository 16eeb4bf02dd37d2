package services

import (
	"context"

	"diskscope/internal/domain"
)

type Scanner interface {
	Begin(req ScanRequest) (*ScanSession, error)
	CancelScan(root string) CancelResult
}

type Actions interface {
	Delete(ctx context.Context, req DeleteRequest) domain.DeleteResult
}

type ActionPreviewer interface {
	Preview(ctx context.Context, paths []string) (ActionPreview, error)
}

type Assessor interface {
	Associate(path string) domain.AppAssociation
	Assess(path string) domain.DeletionAssessment
}

type DeleteResultProvider interface {
	Subscribe() (<-chan domain.DeleteResult, func())
}
