package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/astravon/portal/core/podcast"
)

type podcastRepository struct {
	db *DB
}

var _ podcast.Repository = (*podcastRepository)(nil)

func NewPodcastRepository(db *DB) podcast.Repository {
	return &podcastRepository{db: db}
}

func (repo *podcastRepository) QueryPrograms(ctx context.Context, filter podcast.ProgramFilter) ([]podcast.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	programs := make([]podcast.Program, 0, len(repo.db.programs))
	for _, p := range repo.db.programs {
		if filter.Category == "" || strings.EqualFold(p.Category, filter.Category) {
			programs = append(programs, *p)
		}
	}
	sort.Slice(programs, func(i, j int) bool {
		if programs[i].Title == programs[j].Title {
			return programs[i].ID < programs[j].ID
		}
		return programs[i].Title < programs[j].Title
	})
	return programs, nil
}

func (repo *podcastRepository) GetProgram(ctx context.Context, id int) (podcast.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.programs[id]; ok {
		return *p, nil
	}
	return podcast.Program{}, podcast.ErrProgramNotFound
}

func (repo *podcastRepository) CreateProgram(ctx context.Context, p podcast.Program) (podcast.Program, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextID("program")
	stored := p
	repo.db.programs[p.ID] = &stored
	return p, nil
}

func (repo *podcastRepository) UpdateProgram(ctx context.Context, p podcast.Program) (podcast.Program, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.programs[p.ID]; !ok {
		return podcast.Program{}, podcast.ErrProgramNotFound
	}
	stored := p
	repo.db.programs[p.ID] = &stored
	return p, nil
}

func (repo *podcastRepository) DeleteProgram(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.programs[id]; !ok {
		return podcast.ErrProgramNotFound
	}
	delete(repo.db.programs, id)
	for eid, e := range repo.db.episodes {
		if e.ProgramID == id {
			delete(repo.db.episodes, eid)
		}
	}
	return nil
}

func (repo *podcastRepository) QueryEpisodes(ctx context.Context, filter podcast.EpisodeFilter) ([]podcast.Episode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	episodes := make([]podcast.Episode, 0)
	for _, e := range repo.db.episodes {
		if filter.ProgramID == 0 || e.ProgramID == filter.ProgramID {
			episodes = append(episodes, *e)
		}
	}
	sort.Slice(episodes, func(i, j int) bool {
		a, b := episodes[i], episodes[j]
		if a.ProgramID != b.ProgramID {
			return a.ProgramID < b.ProgramID
		}
		if a.EpisodeNumber != b.EpisodeNumber {
			return a.EpisodeNumber < b.EpisodeNumber
		}
		return a.ID < b.ID
	})
	return episodes, nil
}

func (repo *podcastRepository) GetEpisode(ctx context.Context, id int) (podcast.Episode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if e, ok := repo.db.episodes[id]; ok {
		return *e, nil
	}
	return podcast.Episode{}, podcast.ErrEpisodeNotFound
}

func (repo *podcastRepository) CreateEpisode(ctx context.Context, e podcast.Episode) (podcast.Episode, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.programs[e.ProgramID]; !ok {
		return podcast.Episode{}, podcast.ErrProgramNotFound
	}
	e.ID = repo.db.nextID("episode")
	stored := e
	repo.db.episodes[e.ID] = &stored
	return e, nil
}

func (repo *podcastRepository) UpdateEpisode(ctx context.Context, e podcast.Episode) (podcast.Episode, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.episodes[e.ID]; !ok {
		return podcast.Episode{}, podcast.ErrEpisodeNotFound
	}
	stored := e
	repo.db.episodes[e.ID] = &stored
	return e, nil
}

func (repo *podcastRepository) DeleteEpisode(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.episodes[id]; !ok {
		return podcast.ErrEpisodeNotFound
	}
	delete(repo.db.episodes, id)
	return nil
}
