package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/podcast"
)

type podcastRepository struct {
	db *sqlx.DB
}

var _ podcast.Repository = (*podcastRepository)(nil)

func NewPodcastRepository(db *sqlx.DB) podcast.Repository {
	return &podcastRepository{db: db}
}

func (repo *podcastRepository) QueryPrograms(ctx context.Context, filter podcast.ProgramFilter) ([]podcast.Program, error) {
	programs := make([]podcast.Program, 0)
	q := `SELECT * FROM podcast_program WHERE ($1 = '' OR lower(category) = lower($1)) ORDER BY title, id`
	if err := repo.db.SelectContext(ctx, &programs, q, filter.Category); err != nil {
		return nil, errors.Wrap(err, "selecting programs")
	}
	return programs, nil
}

func (repo *podcastRepository) GetProgram(ctx context.Context, id int) (podcast.Program, error) {
	var p podcast.Program
	err := getOne(ctx, repo.db, &p, podcast.ErrProgramNotFound, `SELECT * FROM podcast_program WHERE id = $1`, id)
	return p, err
}

func (repo *podcastRepository) CreateProgram(ctx context.Context, p podcast.Program) (podcast.Program, error) {
	var created podcast.Program
	q := `INSERT INTO podcast_program (title, description, image_url, category)
		VALUES (:title, :description, :image_url, :category) RETURNING *`
	if err := insert(ctx, repo.db, &created, q, p); err != nil {
		return podcast.Program{}, errors.Wrap(err, "inserting program")
	}
	return created, nil
}

func (repo *podcastRepository) UpdateProgram(ctx context.Context, p podcast.Program) (podcast.Program, error) {
	var updated podcast.Program
	q := `UPDATE podcast_program SET title = :title, description = :description, image_url = :image_url,
			category = :category
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, podcast.ErrProgramNotFound, q, p)
	return updated, err
}

func (repo *podcastRepository) DeleteProgram(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM podcast_program WHERE id = $1`, id, podcast.ErrProgramNotFound)
}

func (repo *podcastRepository) QueryEpisodes(ctx context.Context, filter podcast.EpisodeFilter) ([]podcast.Episode, error) {
	episodes := make([]podcast.Episode, 0)
	q := `SELECT * FROM podcast_episode WHERE ($1 = 0 OR program_id = $1) ORDER BY program_id, episode_number, id`
	if err := repo.db.SelectContext(ctx, &episodes, q, filter.ProgramID); err != nil {
		return nil, errors.Wrap(err, "selecting episodes")
	}
	return episodes, nil
}

func (repo *podcastRepository) GetEpisode(ctx context.Context, id int) (podcast.Episode, error) {
	var e podcast.Episode
	err := getOne(ctx, repo.db, &e, podcast.ErrEpisodeNotFound, `SELECT * FROM podcast_episode WHERE id = $1`, id)
	return e, err
}

func (repo *podcastRepository) CreateEpisode(ctx context.Context, e podcast.Episode) (podcast.Episode, error) {
	var created podcast.Episode
	q := `INSERT INTO podcast_episode (program_id, title, description, audio_url, duration, episode_number, publish_date)
		VALUES (:program_id, :title, :description, :audio_url, :duration, :episode_number, :publish_date)
		RETURNING *`
	if err := insert(ctx, repo.db, &created, q, e); err != nil {
		return podcast.Episode{}, errors.Wrap(err, "inserting episode")
	}
	return created, nil
}

func (repo *podcastRepository) UpdateEpisode(ctx context.Context, e podcast.Episode) (podcast.Episode, error) {
	var updated podcast.Episode
	q := `UPDATE podcast_episode SET program_id = :program_id, title = :title, description = :description,
			audio_url = :audio_url, duration = :duration, episode_number = :episode_number,
			publish_date = :publish_date
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, podcast.ErrEpisodeNotFound, q, e)
	return updated, err
}

func (repo *podcastRepository) DeleteEpisode(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM podcast_episode WHERE id = $1`, id, podcast.ErrEpisodeNotFound)
}
