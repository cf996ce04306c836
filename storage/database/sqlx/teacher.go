package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/teacher"
)

// upserts of a single score column, the other one starting at 0
const (
	upsertGradeQuery = `INSERT INTO current_course_grades (student_id, course_crn, grade, attendance)
		SELECT e.student_id, e.course_crn, $3::double precision, 0
		FROM course_enrollments e WHERE e.student_id = $1 AND e.course_crn = $2
		ON CONFLICT (student_id, course_crn) DO UPDATE SET grade = EXCLUDED.grade`

	upsertAttendanceQuery = `INSERT INTO current_course_grades (student_id, course_crn, grade, attendance)
		SELECT e.student_id, e.course_crn, 0, $3::double precision
		FROM course_enrollments e WHERE e.student_id = $1 AND e.course_crn = $2
		ON CONFLICT (student_id, course_crn) DO UPDATE SET attendance = EXCLUDED.attendance`
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) QueryCourses(ctx context.Context, teacherID int) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := selectSq(ctx, repo.db.db, &courses, psql.
		Select(courseColumns...).
		From("teacher_courses tc").
		Join("courses c ON c.crn = tc.course_crn").
		Where(sq.Eq{"tc.teacher_id": teacherID}).
		OrderBy("tc.course_order", "c.crn"))
	return courses, errors.Wrap(err, "querying teacher courses")
}

func (repo *teacherRepository) QueryCourseStudents(ctx context.Context, crn int) ([]course.StudentRecord, error) {
	students := make([]course.StudentRecord, 0)
	err := selectSq(ctx, repo.db.db, &students, psql.
		Select("e.student_id", "s.name", "u.username", "e.enrollment_order", "g.grade", "g.attendance").
		From("course_enrollments e").
		Join("students s ON s.id = e.student_id").
		Join("users u ON u.id = e.student_id").
		LeftJoin("current_course_grades g ON g.student_id = e.student_id AND g.course_crn = e.course_crn").
		Where(sq.Eq{"e.course_crn": crn}).
		OrderBy("e.enrollment_order", "e.student_id"))
	return students, errors.Wrap(err, "querying course students")
}

func (repo *teacherRepository) TeachesCourse(ctx context.Context, teacherID, crn int) (bool, error) {
	found, err := exists(ctx, repo.db.db, psql.
		Select("1").
		From("teacher_courses").
		Where(sq.Eq{"teacher_id": teacherID, "course_crn": crn}))
	return found, errors.Wrap(err, "checking course assignment")
}

func (repo *teacherRepository) upsertScore(ctx context.Context, query string, studentID, crn int, value float64) error {
	res, err := repo.db.db.ExecContext(ctx, query, studentID, crn, value)
	if err != nil {
		return errors.Wrap(err, "upserting current grade")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "upserting current grade")
	}
	if n == 0 {
		return course.ErrNotEnrolled
	}
	return nil
}

func (repo *teacherRepository) UpsertGrade(ctx context.Context, studentID, crn int, grade float64) error {
	return repo.upsertScore(ctx, upsertGradeQuery, studentID, crn, grade)
}

func (repo *teacherRepository) UpsertAttendance(ctx context.Context, studentID, crn int, attendance float64) error {
	return repo.upsertScore(ctx, upsertAttendanceQuery, studentID, crn, attendance)
}

func (repo *teacherRepository) CompleteCourse(ctx context.Context, studentID, crn int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		pair := sq.Eq{"student_id": studentID, "course_crn": crn}
		n, err := deleteFrom(ctx, tx, "course_enrollments", pair)
		if err != nil {
			return err
		}
		if n == 0 {
			return course.ErrNotEnrolled
		}

		// no current grade yet: archived as 0/0
		var grade, attendance float64
		err = tx.QueryRowxContext(
			ctx,
			"DELETE FROM current_course_grades WHERE student_id = $1 AND course_crn = $2 RETURNING grade, attendance",
			studentID, crn,
		).Scan(&grade, &attendance)
		if err != nil && err != sql.ErrNoRows {
			return errors.Wrap(err, "deleting current grade")
		}

		_, err = execSq(ctx, tx, psql.
			Insert("completed_course_grades").
			Columns("student_id", "course_crn", "grade", "attendance").
			Values(studentID, crn, grade, attendance))
		if err != nil {
			// completed records are never rewritten
			if isUniqueViolation(err) {
				return course.ErrAlreadyCompleted
			}
			return errors.Wrap(err, "inserting completed grade")
		}

		return updateCourseStudentCount(ctx, tx, crn, -1)
	})
}
