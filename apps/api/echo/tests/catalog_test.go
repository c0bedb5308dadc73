package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astravon/portal/core/podcast"
	"github.com/astravon/portal/core/school"
	"github.com/astravon/portal/core/user"
	"github.com/astravon/portal/tests"
)

func Test_schoolApi(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	member := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, true)
	admin := testutil.CreateUser(t, f.usrRepo, "Root", "Admin", "root@example.com", "", []string{user.RoleAdmin}, true)
	adminToken := f.getToken(t, admin)

	rec := f.do(http.MethodPost, "/api/schools", adminToken, marchallObj(t, school.School{Name: " Code ", Tema: "dev"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sch school.School
	require.NoError(t, jsonUnmarshal(rec, &sch))
	assert.Equal(t, "Code", sch.Name)

	rec = f.do(http.MethodPost, "/api/modules", adminToken, marchallObj(t, school.Module{
		SchoolID: sch.ID, Name: "Go", Level: school.LevelBasic, Order: 1,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mod school.Module
	require.NoError(t, jsonUnmarshal(rec, &mod))

	other, err := f.schoolSvc.CreateSchool(ctx, school.School{Name: "Art"})
	require.NoError(t, err)
	otherMod, err := f.schoolSvc.CreateModule(ctx, school.Module{SchoolID: other.ID, Name: "Paint", Level: school.LevelAdvanced})
	require.NoError(t, err)
	course, err := f.schoolSvc.CreateCourse(ctx, school.Course{ModuleID: mod.ID, Title: "Basics"})
	require.NoError(t, err)
	section, err := f.schoolSvc.CreateSection(ctx, school.Section{CourseID: course.ID, ResourceName: "Slides"})
	require.NoError(t, err)

	f.run(t, []httpTest{
		{name: "schools", path: "/api/schools", wantData: marchallList(t, sch, other)},
		{name: "school", path: "/api/schools/" + itoa(sch.ID), wantData: marchallObj(t, sch)},
		{
			name: "school: unknown", path: "/api/schools/999", wantCode: http.StatusNotFound,
			wantData: failure(t, school.ErrSchoolNotFound.Error()),
		},
		{name: "modules", path: "/api/modules", wantData: marchallList(t, otherMod, mod)},
		{name: "modules by school", path: "/api/modules?schoolId=" + itoa(other.ID), wantData: marchallList(t, otherMod)},
		{name: "modules: unknown school", path: "/api/modules?schoolId=999", wantData: marchallList(t)},
		{name: "courses by module", path: "/api/courses?moduleId=" + itoa(mod.ID), wantData: marchallList(t, course)},
		{name: "sections by course", path: "/api/sections?courseId=" + itoa(course.ID), wantData: marchallList(t, section)},
		{name: "section", path: "/api/sections/" + itoa(section.ID), wantData: marchallObj(t, section)},
		{
			name: "create: Auth required", method: http.MethodPost, path: "/api/schools",
			body: marchallObj(t, school.School{Name: "Nope"}), wantCode: http.StatusUnauthorized,
		},
		{
			name: "create: admin required", method: http.MethodPost, path: "/api/schools", token: f.getToken(t, member),
			body: marchallObj(t, school.School{Name: "Nope"}), wantCode: http.StatusForbidden,
			wantData: failure(t, "permission denied"),
		},
		{
			name: "create: missing name", method: http.MethodPost, path: "/api/schools", token: adminToken,
			body: marchallObj(t, school.School{}), wantCode: http.StatusBadRequest,
			wantData: failure(t, "name: this field is required", map[string]string{"name": "this field is required"}),
		},
		{
			name: "create module: unknown school", method: http.MethodPost, path: "/api/modules", token: adminToken,
			body:     marchallObj(t, school.Module{SchoolID: 999, Name: "Orphan", Level: school.LevelBasic}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, school.ErrSchoolNotFound.Error(), map[string]string{"schoolId": school.ErrSchoolNotFound.Error()}),
		},
		{
			name: "update course", method: http.MethodPut, path: "/api/courses/" + itoa(course.ID), token: adminToken,
			body:     marchallObj(t, school.Course{ModuleID: mod.ID, Title: "Basics 2", Duration: 30}),
			wantData: marchallObj(t, school.Course{ID: course.ID, ModuleID: mod.ID, Title: "Basics 2", Duration: 30}),
		},
		{
			name: "update section: unknown", method: http.MethodPut, path: "/api/sections/999", token: adminToken,
			body:     marchallObj(t, school.Section{CourseID: course.ID, ResourceName: "x"}),
			wantCode: http.StatusNotFound,
		},
	})

	// deleting a school cascades to its modules, courses and sections
	rec = f.do(http.MethodDelete, "/api/schools/"+itoa(sch.ID), adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = f.schoolSvc.Section(ctx, section.ID)
	assert.True(t, school.IsNotFound(err))

	rec = f.do(http.MethodDelete, "/api/schools/"+itoa(sch.ID), adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_podcastApi(t *testing.T) {
	f := setup(t)
	admin := testutil.CreateUser(t, f.usrRepo, "Root", "Admin", "admin@example.com", "", nil, true)
	adminToken := f.getToken(t, admin)

	var tech, news podcast.Program
	for _, p := range []struct {
		dest *podcast.Program
		data podcast.Program
	}{
		{&tech, podcast.Program{Title: "Tech Talk", Category: "Tech"}},
		{&news, podcast.Program{Title: "Daily News", Category: "News", ImageURL: "https://example.com/n.png"}},
	} {
		rec := f.do(http.MethodPost, "/api/podcasts/programs", adminToken, marchallObj(t, p.data))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NoError(t, jsonUnmarshal(rec, p.dest))
	}

	rec := f.do(http.MethodPost, "/api/podcasts/episodes", adminToken, marchallObj(t, podcast.Episode{
		ProgramID: tech.ID, Title: "Ep 1", AudioURL: "https://example.com/1.mp3", EpisodeNumber: 1,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ep podcast.Episode
	require.NoError(t, jsonUnmarshal(rec, &ep))
	assert.False(t, ep.PublishDate.IsZero(), "publish date defaults to now")

	f.run(t, []httpTest{
		{name: "programs", path: "/api/podcasts/programs", wantData: marchallList(t, news, tech)},
		{name: "programs by category", path: "/api/podcasts/programs?category=tech", wantData: marchallList(t, tech)},
		{name: "program", path: "/api/podcasts/programs/" + itoa(news.ID), wantData: marchallObj(t, news)},
		{name: "episodes by program", path: "/api/podcasts/episodes?programId=" + itoa(tech.ID), wantData: marchallList(t, ep)},
		{name: "episodes: malformed filter", path: "/api/podcasts/episodes?programId=abc", wantData: marchallList(t)},
		{name: "episodes: other program", path: "/api/podcasts/episodes?programId=" + itoa(news.ID), wantData: marchallList(t)},
		{
			name: "episode: unknown program", method: http.MethodPost, path: "/api/podcasts/episodes", token: adminToken,
			body: marchallObj(t, podcast.Episode{
				ProgramID: 999, Title: "Lost", AudioURL: "https://example.com/x.mp3",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "episode: missing audio", method: http.MethodPost, path: "/api/podcasts/episodes", token: adminToken,
			body:     marchallObj(t, podcast.Episode{ProgramID: tech.ID, Title: "Silent"}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "audio_url: this field is required", map[string]string{"audio_url": "this field is required"}),
		},
		{
			name: "program: Auth required", method: http.MethodDelete, path: "/api/podcasts/programs/" + itoa(news.ID),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "delete program", method: http.MethodDelete, path: "/api/podcasts/programs/" + itoa(tech.ID),
			token: adminToken, wantCode: http.StatusNoContent,
		},
		{name: "episodes gone with program", path: "/api/podcasts/episodes", wantData: marchallList(t)},
	})
}
