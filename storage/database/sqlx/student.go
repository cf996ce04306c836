package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/student"
	"github.com/trezcool/registrar/core/user"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryAvailableCourses(ctx context.Context, studentID int) ([]course.Summary, error) {
	courses := make([]course.Summary, 0)
	err := selectSq(ctx, repo.db.db, &courses, courseSummaries().
		Where("c.num_students < c.course_size").
		Where("NOT EXISTS (SELECT 1 FROM course_enrollments e WHERE e.course_crn = c.crn AND e.student_id = ?)", studentID).
		Where("NOT EXISTS (SELECT 1 FROM completed_course_grades g WHERE g.course_crn = c.crn AND g.student_id = ?)", studentID).
		OrderBy("c.course_name", "c.crn"))
	return courses, errors.Wrap(err, "querying available courses")
}

func (repo *studentRepository) QueryCurrentCourses(ctx context.Context, studentID int) ([]course.Enrollment, error) {
	courses := make([]course.Enrollment, 0)
	err := selectSq(ctx, repo.db.db, &courses, psql.
		Select(courseColumns...).
		Column(instructorColumn).
		Columns("e.enrollment_order", "g.grade", "g.attendance").
		From("course_enrollments e").
		Join("courses c ON c.crn = e.course_crn").
		LeftJoin("current_course_grades g ON g.student_id = e.student_id AND g.course_crn = e.course_crn").
		Where(sq.Eq{"e.student_id": studentID}).
		OrderBy("e.enrollment_order", "c.crn"))
	return courses, errors.Wrap(err, "querying current courses")
}

func (repo *studentRepository) QueryCompletedCourses(ctx context.Context, studentID int) ([]course.Completion, error) {
	courses := make([]course.Completion, 0)
	err := selectSq(ctx, repo.db.db, &courses, psql.
		Select("c.crn", "c.course_name", "c.credits", "g.grade", "g.attendance").
		From("completed_course_grades g").
		Join("courses c ON c.crn = g.course_crn").
		Where(sq.Eq{"g.student_id": studentID}).
		OrderBy("c.course_name", "c.crn"))
	return courses, errors.Wrap(err, "querying completed courses")
}

func (repo *studentRepository) Enroll(ctx context.Context, studentID, crn int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		// serializes the student's enrollments
		var id int
		err := tx.GetContext(ctx, &id, "SELECT id FROM students WHERE id = $1 FOR UPDATE", studentID)
		if err != nil {
			return trapNoRowsErr(err, user.ErrStudentNotFound)
		}

		pair := sq.Eq{"student_id": studentID, "course_crn": crn}
		completed, err := exists(ctx, tx, psql.Select("1").From("completed_course_grades").Where(pair))
		if err != nil {
			return errors.Wrap(err, "checking completed courses")
		}
		if completed {
			return course.ErrAlreadyCompleted
		}
		enrolled, err := exists(ctx, tx, psql.Select("1").From("course_enrollments").Where(pair))
		if err != nil {
			return errors.Wrap(err, "checking enrollments")
		}
		if enrolled {
			return course.ErrAlreadyEnrolled
		}

		if err = updateCourseStudentCount(ctx, tx, crn, 1); err != nil {
			return err
		}

		var order int
		err = tx.GetContext(
			ctx, &order,
			"SELECT COALESCE(MAX(enrollment_order), 0) + 1 FROM course_enrollments WHERE student_id = $1",
			studentID,
		)
		if err != nil {
			return errors.Wrap(err, "computing enrollment order")
		}

		_, err = execSq(ctx, tx, psql.
			Insert("course_enrollments").
			Columns("course_crn", "student_id", "enrollment_order").
			Values(crn, studentID, order))
		if err != nil {
			if isUniqueViolation(err) {
				return course.ErrAlreadyEnrolled
			}
			return errors.Wrap(err, "inserting enrollment")
		}
		return nil
	})
}

func (repo *studentRepository) Drop(ctx context.Context, studentID, crn int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		pair := sq.Eq{"student_id": studentID, "course_crn": crn}
		n, err := deleteFrom(ctx, tx, "course_enrollments", pair)
		if err != nil {
			return err
		}
		if n == 0 {
			return course.ErrNotEnrolled
		}
		if _, err = deleteFrom(ctx, tx, "current_course_grades", pair); err != nil {
			return err
		}
		return updateCourseStudentCount(ctx, tx, crn, -1)
	})
}
