package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/core/lesson"
	"github.com/learnhub/backend/random"
)

type courseTest struct {
	*TestEnv
}

func (ct *courseTest) createCourseOK(t *testing.T) course.Course {
	t.Helper()

	if err := Login(ct.TestEnv, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	cn := course.CourseNew{
		Name:        "course-" + random.String(6),
		Description: "a test course",
		Price:       19.99,
		ImageURL:    "https://images.test/course.png",
	}

	b, err := json.Marshal(cn)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Post(ct.URL+"/courses", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create course: status code %s", w.Status)
	}

	var c course.Course
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	return c
}

func (ct *courseTest) createLessonOK(t *testing.T, courseID string, index int) lesson.Lesson {
	t.Helper()

	if err := Login(ct.TestEnv, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	ln := lesson.LessonNew{
		Index:    index,
		Name:     fmt.Sprintf("lesson-%d", index),
		VideoURL: "https://videos.test/lesson.mp4",
	}

	b, err := json.Marshal(ln)
	if err != nil {
		t.Fatal(err)
	}

	url := fmt.Sprintf("%s/courses/%s/lessons", ct.URL, courseID)
	w, err := ct.Client().Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create lesson: status code %s", w.Status)
	}

	var l lesson.Lesson
	if err := json.NewDecoder(w.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	return l
}

// listCoursesOwnedOK asserts the caller's enrollment set as seen through the
// owned-courses endpoint. The caller must already be logged in.
func (ct *courseTest) listCoursesOwnedOK(t *testing.T, want []course.Course) {
	t.Helper()

	w, err := ct.Client().Get(ct.URL + "/courses/owned")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list owned courses: status code %s", w.Status)
	}

	var got []course.Course
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}

	less := func(a, b course.Course) bool { return a.ID < b.ID }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(less), cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Fatalf("owned courses mismatch (-want +got):\n%s", diff)
	}
}
