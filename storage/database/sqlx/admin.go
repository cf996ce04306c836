package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/user"
)

type adminRepository struct {
	db *DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) QueryStudents(ctx context.Context) ([]admin.StudentSummary, error) {
	students := make([]admin.StudentSummary, 0)
	err := selectSq(ctx, repo.db.db, &students, psql.
		Select("s.id", "s.name", "u.username").
		Column("(SELECT COUNT(*) FROM course_enrollments e WHERE e.student_id = s.id) AS enrolled_courses").
		From("students s").
		Join("users u ON u.id = s.id").
		OrderBy("s.name", "s.id"))
	return students, errors.Wrap(err, "querying students")
}

func (repo *adminRepository) QueryTeachers(ctx context.Context) ([]admin.TeacherSummary, error) {
	teachers := make([]admin.TeacherSummary, 0)
	err := selectSq(ctx, repo.db.db, &teachers, psql.
		Select("t.id", "t.name", "u.username").
		Column("(SELECT COUNT(*) FROM teacher_courses tc WHERE tc.teacher_id = t.id) AS courses_teaching").
		From("teachers t").
		Join("users u ON u.id = t.id").
		OrderBy("t.name", "t.id"))
	return teachers, errors.Wrap(err, "querying teachers")
}

func (repo *adminRepository) QueryCourses(ctx context.Context) ([]course.Summary, error) {
	courses := make([]course.Summary, 0)
	err := selectSq(ctx, repo.db.db, &courses, courseSummaries().OrderBy("c.course_name", "c.crn"))
	return courses, errors.Wrap(err, "querying courses")
}

func (repo *adminRepository) QueryCourseAssignments(ctx context.Context) ([]admin.Assignment, error) {
	assignments := make([]admin.Assignment, 0)
	err := selectSq(ctx, repo.db.db, &assignments, psql.
		Select("tc.teacher_id", "t.name AS teacher_name", "c.course_name", "c.crn", "tc.course_order").
		From("teacher_courses tc").
		Join("teachers t ON t.id = tc.teacher_id").
		Join("courses c ON c.crn = tc.course_crn").
		OrderBy("t.name", "tc.course_order", "c.crn"))
	return assignments, errors.Wrap(err, "querying course assignments")
}

func (repo *adminRepository) CreateCourse(ctx context.Context, crs course.Course) error {
	_, err := execSq(ctx, repo.db.db, psql.
		Insert("courses").
		Columns("crn", "course_name", "credits", "course_size", "num_students").
		Values(crs.CRN, crs.Name, crs.Credits, crs.Capacity, 0))
	if err != nil {
		if isUniqueViolation(err) {
			return course.ErrExists
		}
		return errors.Wrap(err, "inserting course")
	}
	return nil
}

func (repo *adminRepository) DeleteCourse(ctx context.Context, crn int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, table := range []string{
			"course_enrollments",
			"teacher_courses",
			"current_course_grades",
			"completed_course_grades",
		} {
			if _, err := deleteFrom(ctx, tx, table, sq.Eq{"course_crn": crn}); err != nil {
				return err
			}
		}

		n, err := deleteFrom(ctx, tx, "courses", sq.Eq{"crn": crn})
		if err != nil {
			return err
		}
		if n == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (repo *adminRepository) DeleteUser(ctx context.Context, id int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var typ user.Type
		err := tx.GetContext(ctx, &typ, "SELECT user_type FROM users WHERE id = $1 FOR UPDATE", id)
		if err != nil {
			return trapNoRowsErr(err, user.ErrNotFound)
		}

		switch typ {
		case user.TypeAdmin:
			return admin.ErrAdminNotRemovable
		case user.TypeStudent:
			if err = deleteStudent(ctx, tx, id); err != nil {
				return err
			}
		case user.TypeTeacher:
			if _, err = deleteFrom(ctx, tx, "teacher_courses", sq.Eq{"teacher_id": id}); err != nil {
				return err
			}
			if _, err = deleteFrom(ctx, tx, "teachers", sq.Eq{"id": id}); err != nil {
				return err
			}
		default:
			return errors.Errorf("user %d has unknown type %q", id, typ)
		}

		_, err = deleteFrom(ctx, tx, "users", sq.Eq{"id": id})
		return err
	})
}

// deleteStudent frees the student's seats then removes every row referencing them.
func deleteStudent(ctx context.Context, tx *sqlx.Tx, id int) error {
	var crns []int
	if err := tx.SelectContext(ctx, &crns, "SELECT course_crn FROM course_enrollments WHERE student_id = $1", id); err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	for _, crn := range crns {
		if err := updateCourseStudentCount(ctx, tx, crn, -1); err != nil {
			return err
		}
	}

	for _, table := range []string{
		"course_enrollments",
		"current_course_grades",
		"completed_course_grades",
	} {
		if _, err := deleteFrom(ctx, tx, table, sq.Eq{"student_id": id}); err != nil {
			return err
		}
	}
	_, err := deleteFrom(ctx, tx, "students", sq.Eq{"id": id})
	return err
}

func (repo *adminRepository) AssignCourse(ctx context.Context, teacherID, crn int) error {
	return repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		// serializes the course_order computation per teacher
		var id int
		err := tx.GetContext(ctx, &id, "SELECT id FROM teachers WHERE id = $1 FOR UPDATE", teacherID)
		if err != nil {
			return trapNoRowsErr(err, user.ErrTeacherNotFound)
		}
		found, err := courseExists(ctx, tx, crn)
		if err != nil {
			return err
		}
		if !found {
			return course.ErrNotFound
		}

		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO teacher_courses (teacher_id, course_crn, course_order)
			SELECT $1::integer, $2::integer, COALESCE(MAX(course_order), 0) + 1
			FROM teacher_courses WHERE teacher_id = $1::integer
			ON CONFLICT (teacher_id, course_crn) DO NOTHING`,
			teacherID, crn,
		)
		if err != nil {
			return errors.Wrap(err, "inserting course assignment")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "inserting course assignment")
		}
		if n == 0 {
			return admin.ErrAlreadyAssigned
		}
		return nil
	})
}

func (repo *adminRepository) UnassignCourse(ctx context.Context, teacherID, crn int) error {
	n, err := deleteFrom(ctx, repo.db.db, "teacher_courses", sq.Eq{"teacher_id": teacherID, "course_crn": crn})
	if err != nil {
		return err
	}
	if n == 0 {
		return admin.ErrAssignmentNotFound
	}
	return nil
}
