package podcast

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

var (
	// errors
	ErrProgramNotFound = errors.New("program not found")
	ErrEpisodeNotFound = errors.New("episode not found")
)

func IsNotFound(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrProgramNotFound || cause == ErrEpisodeNotFound
}

type (
	Repository interface {
		// QueryPrograms lists programs by title.
		QueryPrograms(ctx context.Context, filter ProgramFilter) ([]Program, error)
		GetProgram(ctx context.Context, id int) (Program, error)
		CreateProgram(ctx context.Context, p Program) (Program, error)
		UpdateProgram(ctx context.Context, p Program) (Program, error)
		DeleteProgram(ctx context.Context, id int) error

		// QueryEpisodes lists episodes by program then episode number.
		QueryEpisodes(ctx context.Context, filter EpisodeFilter) ([]Episode, error)
		GetEpisode(ctx context.Context, id int) (Episode, error)
		CreateEpisode(ctx context.Context, e Episode) (Episode, error)
		UpdateEpisode(ctx context.Context, e Episode) (Episode, error)
		DeleteEpisode(ctx context.Context, id int) error
	}

	// Service is the podcasts back office.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Programs(ctx context.Context, filter ProgramFilter) ([]Program, error) {
	filter.Category = core.CleanString(filter.Category)
	programs, err := svc.repo.QueryPrograms(ctx, filter)
	if programs == nil && err == nil {
		programs = []Program{}
	}
	return programs, err
}

func (svc *Service) Program(ctx context.Context, id int) (Program, error) {
	return svc.repo.GetProgram(ctx, id)
}

func (svc *Service) CreateProgram(ctx context.Context, p Program) (Program, error) {
	p.ID = 0
	return svc.repo.CreateProgram(ctx, p)
}

func (svc *Service) UpdateProgram(ctx context.Context, id int, p Program) (Program, error) {
	if _, err := svc.repo.GetProgram(ctx, id); err != nil {
		return Program{}, err
	}
	p.ID = id
	return svc.repo.UpdateProgram(ctx, p)
}

func (svc *Service) DeleteProgram(ctx context.Context, id int) error {
	return svc.repo.DeleteProgram(ctx, id)
}

func (svc *Service) Episodes(ctx context.Context, filter EpisodeFilter) ([]Episode, error) {
	episodes, err := svc.repo.QueryEpisodes(ctx, filter)
	if episodes == nil && err == nil {
		episodes = []Episode{}
	}
	return episodes, err
}

func (svc *Service) Episode(ctx context.Context, id int) (Episode, error) {
	return svc.repo.GetEpisode(ctx, id)
}

func (svc *Service) checkProgram(ctx context.Context, id int) error {
	if _, err := svc.repo.GetProgram(ctx, id); err != nil {
		if errors.Cause(err) == ErrProgramNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "program_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding program")
	}
	return nil
}

func (svc *Service) CreateEpisode(ctx context.Context, e Episode) (Episode, error) {
	if err := svc.checkProgram(ctx, e.ProgramID); err != nil {
		return Episode{}, err
	}
	if e.PublishDate.IsZero() {
		e.PublishDate = time.Now().UTC()
	}
	e.ID = 0
	return svc.repo.CreateEpisode(ctx, e)
}

func (svc *Service) UpdateEpisode(ctx context.Context, id int, e Episode) (Episode, error) {
	orig, err := svc.repo.GetEpisode(ctx, id)
	if err != nil {
		return Episode{}, err
	}
	if err := svc.checkProgram(ctx, e.ProgramID); err != nil {
		return Episode{}, err
	}
	if e.PublishDate.IsZero() {
		e.PublishDate = orig.PublishDate
	}
	e.ID = id
	return svc.repo.UpdateEpisode(ctx, e)
}

func (svc *Service) DeleteEpisode(ctx context.Context, id int) error {
	return svc.repo.DeleteEpisode(ctx, id)
}
