package inmemdb

import (
	"context"
	"sort"

	"github.com/astravon/portal/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// Schools

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	schools := make([]school.School, 0, len(repo.db.schools))
	for _, s := range repo.db.schools {
		schools = append(schools, *s)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].ID < schools[j].ID })
	return schools, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id int) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.schools[id]; ok {
		return *s, nil
	}
	return school.School{}, school.ErrSchoolNotFound
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, s school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = repo.db.nextID("school")
	stored := s
	repo.db.schools[s.ID] = &stored
	return s, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, s school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[s.ID]; !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	stored := s
	repo.db.schools[s.ID] = &stored
	return s, nil
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[id]; !ok {
		return school.ErrSchoolNotFound
	}
	delete(repo.db.schools, id)
	for mid, m := range repo.db.modules {
		if m.SchoolID == id {
			repo.db.deleteModule(mid)
		}
	}
	return nil
}

// Modules

func (repo *schoolRepository) QueryModules(ctx context.Context, schoolID int) ([]school.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	modules := make([]school.Module, 0)
	for _, m := range repo.db.modules {
		if schoolID == 0 || m.SchoolID == schoolID {
			modules = append(modules, *m)
		}
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Order == modules[j].Order {
			return modules[i].ID < modules[j].ID
		}
		return modules[i].Order < modules[j].Order
	})
	return modules, nil
}

func (repo *schoolRepository) GetModule(ctx context.Context, id int) (school.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.modules[id]; ok {
		return *m, nil
	}
	return school.Module{}, school.ErrModuleNotFound
}

func (repo *schoolRepository) CreateModule(ctx context.Context, m school.Module) (school.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[m.SchoolID]; !ok {
		return school.Module{}, school.ErrSchoolNotFound
	}
	m.ID = repo.db.nextID("module")
	stored := m
	repo.db.modules[m.ID] = &stored
	return m, nil
}

func (repo *schoolRepository) UpdateModule(ctx context.Context, m school.Module) (school.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[m.ID]; !ok {
		return school.Module{}, school.ErrModuleNotFound
	}
	stored := m
	repo.db.modules[m.ID] = &stored
	return m, nil
}

func (repo *schoolRepository) DeleteModule(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[id]; !ok {
		return school.ErrModuleNotFound
	}
	repo.db.deleteModule(id)
	return nil
}

func (db *DB) deleteModule(id int) {
	delete(db.modules, id)
	for cid, c := range db.courses {
		if c.ModuleID == id {
			db.deleteCourse(cid)
		}
	}
}

// Courses

func (repo *schoolRepository) QueryCourses(ctx context.Context, moduleID int) ([]school.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]school.Course, 0)
	for _, c := range repo.db.courses {
		if moduleID == 0 || c.ModuleID == moduleID {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Order == courses[j].Order {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].Order < courses[j].Order
	})
	return courses, nil
}

func (repo *schoolRepository) GetCourse(ctx context.Context, id int) (school.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return school.Course{}, school.ErrCourseNotFound
}

func (repo *schoolRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[c.ModuleID]; !ok {
		return school.Course{}, school.ErrModuleNotFound
	}
	c.ID = repo.db.nextID("course")
	stored := c
	repo.db.courses[c.ID] = &stored
	return c, nil
}

func (repo *schoolRepository) UpdateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return school.Course{}, school.ErrCourseNotFound
	}
	stored := c
	repo.db.courses[c.ID] = &stored
	return c, nil
}

func (repo *schoolRepository) DeleteCourse(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return school.ErrCourseNotFound
	}
	repo.db.deleteCourse(id)
	return nil
}

func (db *DB) deleteCourse(id int) {
	delete(db.courses, id)
	for sid, s := range db.sections {
		if s.CourseID == id {
			delete(db.sections, sid)
		}
	}
}

// Sections

func (repo *schoolRepository) QuerySections(ctx context.Context, courseID int) ([]school.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	sections := make([]school.Section, 0)
	for _, s := range repo.db.sections {
		if courseID == 0 || s.CourseID == courseID {
			sections = append(sections, *s)
		}
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Order == sections[j].Order {
			return sections[i].ID < sections[j].ID
		}
		return sections[i].Order < sections[j].Order
	})
	return sections, nil
}

func (repo *schoolRepository) GetSection(ctx context.Context, id int) (school.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.sections[id]; ok {
		return *s, nil
	}
	return school.Section{}, school.ErrSectionNotFound
}

func (repo *schoolRepository) CreateSection(ctx context.Context, s school.Section) (school.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[s.CourseID]; !ok {
		return school.Section{}, school.ErrCourseNotFound
	}
	s.ID = repo.db.nextID("section")
	stored := s
	repo.db.sections[s.ID] = &stored
	return s, nil
}

func (repo *schoolRepository) UpdateSection(ctx context.Context, s school.Section) (school.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.sections[s.ID]; !ok {
		return school.Section{}, school.ErrSectionNotFound
	}
	stored := s
	repo.db.sections[s.ID] = &stored
	return s, nil
}

func (repo *schoolRepository) DeleteSection(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.sections[id]; !ok {
		return school.ErrSectionNotFound
	}
	delete(repo.db.sections, id)
	return nil
}
