package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/course"
)

var (
	courseColumns = []string{"c.crn", "c.course_name", "c.credits", "c.course_size", "c.num_students"}

	// one row per course: every instructor name joined, or course.NotAssigned
	instructorColumn = `COALESCE((
		SELECT string_agg(t.name, ', ' ORDER BY t.name)
		FROM teacher_courses tc JOIN teachers t ON t.id = tc.teacher_id
		WHERE tc.course_crn = c.crn
	), '` + course.NotAssigned + `') AS instructor`
)

func courseSummaries() sq.SelectBuilder {
	return psql.Select(courseColumns...).Column(instructorColumn).From("courses c")
}

func courseExists(ctx context.Context, exec core.DBExecutor, crn int) (bool, error) {
	var found bool
	err := exec.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM courses WHERE crn = $1)", crn).Scan(&found)
	return found, errors.Wrap(err, "checking course")
}

// updateCourseStudentCount adds delta to the course's num_students within the caller's
// transaction. The counter never leaves [0, course_size]: a refused increment is
// course.ErrFull, a missing course course.ErrNotFound.
func updateCourseStudentCount(ctx context.Context, exec core.DBExecutor, crn, delta int) error {
	res, err := exec.ExecContext(
		ctx,
		`UPDATE courses SET num_students = num_students + $1
		WHERE crn = $2 AND num_students + $1 BETWEEN 0 AND course_size`,
		delta, crn,
	)
	if err != nil {
		return errors.Wrap(err, "updating course student count")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating course student count")
	}
	if n > 0 {
		return nil
	}

	found, err := courseExists(ctx, exec, crn)
	switch {
	case err != nil:
		return err
	case !found:
		return course.ErrNotFound
	case delta > 0:
		return course.ErrFull
	}
	return errors.Errorf("course %d: student count cannot drop below zero", crn)
}
