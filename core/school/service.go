package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

var (
	// errors
	ErrSchoolNotFound  = errors.New("school not found")
	ErrModuleNotFound  = errors.New("module not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSectionNotFound = errors.New("section not found")
)

// IsNotFound reports whether err means a catalog entry does not exist.
func IsNotFound(err error) bool {
	switch errors.Cause(err) {
	case ErrSchoolNotFound, ErrModuleNotFound, ErrCourseNotFound, ErrSectionNotFound:
		return true
	}
	return false
}

type (
	// Repository stores the catalog. Query* list in display order; a zero parent ID lists everything.
	Repository interface {
		QuerySchools(ctx context.Context) ([]School, error)
		GetSchool(ctx context.Context, id int) (School, error)
		CreateSchool(ctx context.Context, s School) (School, error)
		UpdateSchool(ctx context.Context, s School) (School, error)
		DeleteSchool(ctx context.Context, id int) error

		QueryModules(ctx context.Context, schoolID int) ([]Module, error)
		GetModule(ctx context.Context, id int) (Module, error)
		CreateModule(ctx context.Context, m Module) (Module, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		DeleteModule(ctx context.Context, id int) error

		QueryCourses(ctx context.Context, moduleID int) ([]Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		CreateCourse(ctx context.Context, c Course) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		QuerySections(ctx context.Context, courseID int) ([]Section, error)
		GetSection(ctx context.Context, id int) (Section, error)
		CreateSection(ctx context.Context, s Section) (Section, error)
		UpdateSection(ctx context.Context, s Section) (Section, error)
		DeleteSection(ctx context.Context, id int) error
	}

	// Service is the schools back office. Children can only be attached to existing parents.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func parentError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// Schools

func (svc *Service) Schools(ctx context.Context) ([]School, error) {
	schools, err := svc.repo.QuerySchools(ctx)
	if schools == nil && err == nil {
		schools = []School{}
	}
	return schools, err
}

func (svc *Service) School(ctx context.Context, id int) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) CreateSchool(ctx context.Context, s School) (School, error) {
	s.ID = 0
	return svc.repo.CreateSchool(ctx, s)
}

func (svc *Service) UpdateSchool(ctx context.Context, id int, s School) (School, error) {
	if _, err := svc.repo.GetSchool(ctx, id); err != nil {
		return School{}, err
	}
	s.ID = id
	return svc.repo.UpdateSchool(ctx, s)
}

func (svc *Service) DeleteSchool(ctx context.Context, id int) error {
	return svc.repo.DeleteSchool(ctx, id)
}

// Modules

func (svc *Service) Modules(ctx context.Context, schoolID int) ([]Module, error) {
	modules, err := svc.repo.QueryModules(ctx, schoolID)
	if modules == nil && err == nil {
		modules = []Module{}
	}
	return modules, err
}

func (svc *Service) Module(ctx context.Context, id int) (Module, error) {
	return svc.repo.GetModule(ctx, id)
}

func (svc *Service) checkSchool(ctx context.Context, id int) error {
	if _, err := svc.repo.GetSchool(ctx, id); err != nil {
		if errors.Cause(err) == ErrSchoolNotFound {
			return parentError("schoolId", err)
		}
		return errors.Wrap(err, "finding school")
	}
	return nil
}

func (svc *Service) CreateModule(ctx context.Context, m Module) (Module, error) {
	if err := svc.checkSchool(ctx, m.SchoolID); err != nil {
		return Module{}, err
	}
	m.ID = 0
	return svc.repo.CreateModule(ctx, m)
}

func (svc *Service) UpdateModule(ctx context.Context, id int, m Module) (Module, error) {
	if _, err := svc.repo.GetModule(ctx, id); err != nil {
		return Module{}, err
	}
	if err := svc.checkSchool(ctx, m.SchoolID); err != nil {
		return Module{}, err
	}
	m.ID = id
	return svc.repo.UpdateModule(ctx, m)
}

func (svc *Service) DeleteModule(ctx context.Context, id int) error {
	return svc.repo.DeleteModule(ctx, id)
}

// Courses

func (svc *Service) Courses(ctx context.Context, moduleID int) ([]Course, error) {
	courses, err := svc.repo.QueryCourses(ctx, moduleID)
	if courses == nil && err == nil {
		courses = []Course{}
	}
	return courses, err
}

func (svc *Service) Course(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) checkModule(ctx context.Context, id int) error {
	if _, err := svc.repo.GetModule(ctx, id); err != nil {
		if errors.Cause(err) == ErrModuleNotFound {
			return parentError("moduleId", err)
		}
		return errors.Wrap(err, "finding module")
	}
	return nil
}

func (svc *Service) CreateCourse(ctx context.Context, c Course) (Course, error) {
	if err := svc.checkModule(ctx, c.ModuleID); err != nil {
		return Course{}, err
	}
	c.ID = 0
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) UpdateCourse(ctx context.Context, id int, c Course) (Course, error) {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		return Course{}, err
	}
	if err := svc.checkModule(ctx, c.ModuleID); err != nil {
		return Course{}, err
	}
	c.ID = id
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *Service) DeleteCourse(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Sections

func (svc *Service) Sections(ctx context.Context, courseID int) ([]Section, error) {
	sections, err := svc.repo.QuerySections(ctx, courseID)
	if sections == nil && err == nil {
		sections = []Section{}
	}
	return sections, err
}

func (svc *Service) Section(ctx context.Context, id int) (Section, error) {
	return svc.repo.GetSection(ctx, id)
}

func (svc *Service) checkCourse(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		if errors.Cause(err) == ErrCourseNotFound {
			return parentError("courseId", err)
		}
		return errors.Wrap(err, "finding course")
	}
	return nil
}

func (svc *Service) CreateSection(ctx context.Context, s Section) (Section, error) {
	if err := svc.checkCourse(ctx, s.CourseID); err != nil {
		return Section{}, err
	}
	s.ID = 0
	return svc.repo.CreateSection(ctx, s)
}

func (svc *Service) UpdateSection(ctx context.Context, id int, s Section) (Section, error) {
	if _, err := svc.repo.GetSection(ctx, id); err != nil {
		return Section{}, err
	}
	if err := svc.checkCourse(ctx, s.CourseID); err != nil {
		return Section{}, err
	}
	s.ID = id
	return svc.repo.UpdateSection(ctx, s)
}

func (svc *Service) DeleteSection(ctx context.Context, id int) error {
	return svc.repo.DeleteSection(ctx, id)
}
