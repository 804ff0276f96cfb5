package service

import (
	"context"

	"github.com/dkenzhe/library-service/library/internal/model"
)

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, category string, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, category, page, size)
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) CreateJournal(ctx context.Context, req model.CreateJournalRequest) (model.Journal, error) {
	return s.repo.CreateJournal(ctx, req)
}

func (s *Service) GetJournal(ctx context.Context, id int) (model.Journal, error) {
	return s.repo.GetJournal(ctx, id)
}

func (s *Service) ListJournals(ctx context.Context, page, size int) (model.ListJournals, error) {
	return s.repo.ListJournals(ctx, page, size)
}

func (s *Service) DeleteJournal(ctx context.Context, id int) error {
	return s.repo.DeleteJournal(ctx, id)
}

func (s *Service) CreateReport(ctx context.Context, req model.CreateReportRequest) (model.ResearchReport, error) {
	return s.repo.CreateReport(ctx, req)
}

func (s *Service) GetReport(ctx context.Context, id int) (model.ResearchReport, error) {
	return s.repo.GetReport(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, page, size int) (model.ListReports, error) {
	return s.repo.ListReports(ctx, page, size)
}

func (s *Service) DeleteReport(ctx context.Context, id int) error {
	return s.repo.DeleteReport(ctx, id)
}
