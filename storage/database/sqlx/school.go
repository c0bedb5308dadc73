package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

// insert runs a named INSERT ... RETURNING * into dest.
func insert(ctx context.Context, db *sqlx.DB, dest interface{}, query string, arg interface{}) error {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return db.GetContext(ctx, dest, q, args...)
}

// update runs a named UPDATE ... RETURNING * into dest, mapping a missing row to notFound.
func update(ctx context.Context, db *sqlx.DB, dest interface{}, notFound error, query string, arg interface{}) error {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return getOne(ctx, db, dest, notFound, q, args...)
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	schools := make([]school.School, 0)
	if err := repo.db.SelectContext(ctx, &schools, `SELECT * FROM school ORDER BY name, id`); err != nil {
		return nil, errors.Wrap(err, "selecting schools")
	}
	return schools, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id int) (school.School, error) {
	var s school.School
	err := getOne(ctx, repo.db, &s, school.ErrSchoolNotFound, `SELECT * FROM school WHERE id = $1`, id)
	return s, err
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, s school.School) (school.School, error) {
	var created school.School
	q := `INSERT INTO school (name, description, image_url, tema)
		VALUES (:name, :description, :image_url, :tema) RETURNING *`
	if err := insert(ctx, repo.db, &created, q, s); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return created, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, s school.School) (school.School, error) {
	var updated school.School
	q := `UPDATE school SET name = :name, description = :description, image_url = :image_url, tema = :tema
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, school.ErrSchoolNotFound, q, s)
	return updated, err
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM school WHERE id = $1`, id, school.ErrSchoolNotFound)
}

func (repo *schoolRepository) QueryModules(ctx context.Context, schoolID int) ([]school.Module, error) {
	modules := make([]school.Module, 0)
	q := `SELECT * FROM school_module WHERE ($1 = 0 OR school_id = $1) ORDER BY school_id, "order", id`
	if err := repo.db.SelectContext(ctx, &modules, q, schoolID); err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	return modules, nil
}

func (repo *schoolRepository) GetModule(ctx context.Context, id int) (school.Module, error) {
	var m school.Module
	err := getOne(ctx, repo.db, &m, school.ErrModuleNotFound, `SELECT * FROM school_module WHERE id = $1`, id)
	return m, err
}

func (repo *schoolRepository) CreateModule(ctx context.Context, m school.Module) (school.Module, error) {
	var created school.Module
	q := `INSERT INTO school_module (school_id, name, description, level, "order")
		VALUES (:school_id, :name, :description, :level, :order) RETURNING *`
	if err := insert(ctx, repo.db, &created, q, m); err != nil {
		return school.Module{}, errors.Wrap(err, "inserting module")
	}
	return created, nil
}

func (repo *schoolRepository) UpdateModule(ctx context.Context, m school.Module) (school.Module, error) {
	var updated school.Module
	q := `UPDATE school_module SET school_id = :school_id, name = :name, description = :description,
			level = :level, "order" = :order
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, school.ErrModuleNotFound, q, m)
	return updated, err
}

func (repo *schoolRepository) DeleteModule(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM school_module WHERE id = $1`, id, school.ErrModuleNotFound)
}

func (repo *schoolRepository) QueryCourses(ctx context.Context, moduleID int) ([]school.Course, error) {
	courses := make([]school.Course, 0)
	q := `SELECT * FROM course WHERE ($1 = 0 OR module_id = $1) ORDER BY module_id, "order", id`
	if err := repo.db.SelectContext(ctx, &courses, q, moduleID); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo *schoolRepository) GetCourse(ctx context.Context, id int) (school.Course, error) {
	var c school.Course
	err := getOne(ctx, repo.db, &c, school.ErrCourseNotFound, `SELECT * FROM course WHERE id = $1`, id)
	return c, err
}

func (repo *schoolRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	var created school.Course
	q := `INSERT INTO course (module_id, title, description, image_url, video_url, duration, "order")
		VALUES (:module_id, :title, :description, :image_url, :video_url, :duration, :order) RETURNING *`
	if err := insert(ctx, repo.db, &created, q, c); err != nil {
		return school.Course{}, errors.Wrap(err, "inserting course")
	}
	return created, nil
}

func (repo *schoolRepository) UpdateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	var updated school.Course
	q := `UPDATE course SET module_id = :module_id, title = :title, description = :description,
			image_url = :image_url, video_url = :video_url, duration = :duration, "order" = :order
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, school.ErrCourseNotFound, q, c)
	return updated, err
}

func (repo *schoolRepository) DeleteCourse(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM course WHERE id = $1`, id, school.ErrCourseNotFound)
}

func (repo *schoolRepository) QuerySections(ctx context.Context, courseID int) ([]school.Section, error) {
	sections := make([]school.Section, 0)
	q := `SELECT * FROM course_section WHERE ($1 = 0 OR course_id = $1) ORDER BY course_id, "order", id`
	if err := repo.db.SelectContext(ctx, &sections, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting sections")
	}
	return sections, nil
}

func (repo *schoolRepository) GetSection(ctx context.Context, id int) (school.Section, error) {
	var s school.Section
	err := getOne(ctx, repo.db, &s, school.ErrSectionNotFound, `SELECT * FROM course_section WHERE id = $1`, id)
	return s, err
}

func (repo *schoolRepository) CreateSection(ctx context.Context, s school.Section) (school.Section, error) {
	var created school.Section
	q := `INSERT INTO course_section (course_id, resource_name, instructions, external_url, "order")
		VALUES (:course_id, :resource_name, :instructions, :external_url, :order) RETURNING *`
	if err := insert(ctx, repo.db, &created, q, s); err != nil {
		return school.Section{}, errors.Wrap(err, "inserting section")
	}
	return created, nil
}

func (repo *schoolRepository) UpdateSection(ctx context.Context, s school.Section) (school.Section, error) {
	var updated school.Section
	q := `UPDATE course_section SET course_id = :course_id, resource_name = :resource_name,
			instructions = :instructions, external_url = :external_url, "order" = :order
		WHERE id = :id RETURNING *`
	err := update(ctx, repo.db, &updated, school.ErrSectionNotFound, q, s)
	return updated, err
}

func (repo *schoolRepository) DeleteSection(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM course_section WHERE id = $1`, id, school.ErrSectionNotFound)
}
