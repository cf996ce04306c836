package inmemdb

import (
	"context"
	"sort"

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

func (repo *adminRepository) QueryStudents(_ context.Context) ([]admin.StudentSummary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	students := make([]admin.StudentSummary, 0)
	for _, row := range repo.db.users {
		if row.Type != user.TypeStudent {
			continue
		}
		var enrolled int
		for k := range repo.db.enrollments {
			if k.owner == row.ID {
				enrolled++
			}
		}
		students = append(students, admin.StudentSummary{
			ID:              row.ID,
			Name:            row.Name,
			Username:        row.Username,
			EnrolledCourses: enrolled,
		})
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *adminRepository) QueryTeachers(_ context.Context) ([]admin.TeacherSummary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	teachers := make([]admin.TeacherSummary, 0)
	for _, row := range repo.db.users {
		if row.Type != user.TypeTeacher {
			continue
		}
		var teaching int
		for k := range repo.db.assignments {
			if k.owner == row.ID {
				teaching++
			}
		}
		teachers = append(teachers, admin.TeacherSummary{
			ID:              row.ID,
			Name:            row.Name,
			Username:        row.Username,
			CoursesTeaching: teaching,
		})
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Name != teachers[j].Name {
			return teachers[i].Name < teachers[j].Name
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (repo *adminRepository) QueryCourses(_ context.Context) ([]course.Summary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	courses := make([]course.Summary, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, repo.db.summary(*crs))
	}
	sortCourseSummaries(courses)
	return courses, nil
}

func (repo *adminRepository) QueryCourseAssignments(_ context.Context) ([]admin.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	assignments := make([]admin.Assignment, 0, len(repo.db.assignments))
	for k, order := range repo.db.assignments {
		assignments = append(assignments, admin.Assignment{
			TeacherID:   k.owner,
			TeacherName: repo.db.users[k.owner].Name,
			CourseName:  repo.db.courses[k.crn].Name,
			CRN:         k.crn,
			CourseOrder: order,
		})
	}
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.TeacherName != b.TeacherName {
			return a.TeacherName < b.TeacherName
		}
		if a.CourseOrder != b.CourseOrder {
			return a.CourseOrder < b.CourseOrder
		}
		return a.CRN < b.CRN
	})
	return assignments, nil
}

func (repo *adminRepository) CreateCourse(_ context.Context, crs course.Course) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crs.CRN]; ok {
		return course.ErrExists
	}
	crs.NumStudents = 0
	repo.db.courses[crs.CRN] = &crs
	return nil
}

func (repo *adminRepository) DeleteCourse(_ context.Context, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crn]; !ok {
		return course.ErrNotFound
	}
	for _, table := range []map[key]int{repo.db.enrollments, repo.db.assignments} {
		for k := range table {
			if k.crn == crn {
				delete(table, k)
			}
		}
	}
	for _, table := range []map[key]scores{repo.db.current, repo.db.completed} {
		for k := range table {
			if k.crn == crn {
				delete(table, k)
			}
		}
	}
	delete(repo.db.courses, crn)
	return nil
}

func (repo *adminRepository) DeleteUser(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}

	switch row.Type {
	case user.TypeAdmin:
		return admin.ErrAdminNotRemovable
	case user.TypeStudent:
		// all counters are checked before any row changes
		var enrolled []key
		for k := range repo.db.enrollments {
			if k.owner == id {
				if err := repo.db.checkCourseStudentCount(k.crn, -1); err != nil {
					return err
				}
				enrolled = append(enrolled, k)
			}
		}
		for _, k := range enrolled {
			if err := repo.db.updateCourseStudentCount(k.crn, -1); err != nil {
				return err
			}
			delete(repo.db.enrollments, k)
		}
		for _, table := range []map[key]scores{repo.db.current, repo.db.completed} {
			for k := range table {
				if k.owner == id {
					delete(table, k)
				}
			}
		}
	case user.TypeTeacher:
		for k := range repo.db.assignments {
			if k.owner == id {
				delete(repo.db.assignments, k)
			}
		}
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *adminRepository) AssignCourse(_ context.Context, teacherID, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.userOfType(teacherID, user.TypeTeacher); !ok {
		return user.ErrTeacherNotFound
	}
	if _, ok := repo.db.courses[crn]; !ok {
		return course.ErrNotFound
	}
	k := key{owner: teacherID, crn: crn}
	if _, ok := repo.db.assignments[k]; ok {
		return admin.ErrAlreadyAssigned
	}
	repo.db.assignments[k] = nextOrder(repo.db.assignments, teacherID)
	return nil
}

func (repo *adminRepository) UnassignCourse(_ context.Context, teacherID, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	k := key{owner: teacherID, crn: crn}
	if _, ok := repo.db.assignments[k]; !ok {
		return admin.ErrAssignmentNotFound
	}
	delete(repo.db.assignments, k)
	return nil
}
