package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/fallback"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

const (
	formationsCollection  = "formations"
	studentsCollection    = "students"
	enrollmentsCollection = "student_enrollments"
)

// FormationStore groups the training-side collections: formations, students
// and enrollments. Enrollment creation consumes a seat with a conditional
// update so a full session cannot be oversubscribed by concurrent requests.
type FormationStore struct {
	db  *gorm.DB
	fb  *fallback.Store
	bus Bus
}

func NewFormationStore(db *gorm.DB, fb *fallback.Store, bus Bus) *FormationStore {
	return &FormationStore{db: db, fb: fb, bus: bus}
}

func (s *FormationStore) ListFormations(ctx context.Context) (formations []domain.Formation, degraded bool, err error) {
	err = s.db.WithContext(ctx).Order("start_date DESC").Find(&formations).Error
	if err != nil {
		zap.L().Warn("formation list degraded to local mirror", zap.Error(err))
		local := []domain.Formation{}
		s.fb.ReadOr(formationsCollection, &local)
		return local, true, nil
	}
	if werr := s.fb.Write(formationsCollection, formations); werr == nil {
		_ = s.fb.ClearUnsynced(formationsCollection)
	}
	return formations, false, nil
}

func (s *FormationStore) CreateFormation(ctx context.Context, f *domain.Formation) (local bool, err error) {
	if f.ID == 0 {
		f.ID = common.UUIDint64()
	}
	f.Status = common.IfEmptyStr(f.Status, domain.FormationStatusUpcoming)
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	defer s.bus.Publish(TopicFormationsChanged)

	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "create formation rejected")
		}
		locals := []domain.Formation{}
		s.fb.ReadOr(formationsCollection, &locals)
		_ = s.fb.Write(formationsCollection, append(locals, *f))
		_ = s.fb.MarkUnsynced(formationsCollection, f.ID)
		return true, nil
	}
	return false, nil
}

func (s *FormationStore) UpdateFormation(ctx context.Context, f *domain.Formation) error {
	f.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(f).Error; err != nil {
		return err
	}
	s.bus.Publish(TopicFormationsChanged)
	return nil
}

func (s *FormationStore) DeleteFormation(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Formation{}).Error; err != nil {
		return err
	}
	s.bus.Publish(TopicFormationsChanged)
	return nil
}

func (s *FormationStore) ListStudents(ctx context.Context) (students []domain.Student, degraded bool, err error) {
	err = s.db.WithContext(ctx).Order("name").Find(&students).Error
	if err != nil {
		zap.L().Warn("student list degraded to local mirror", zap.Error(err))
		local := []domain.Student{}
		s.fb.ReadOr(studentsCollection, &local)
		return local, true, nil
	}
	if werr := s.fb.Write(studentsCollection, students); werr == nil {
		_ = s.fb.ClearUnsynced(studentsCollection)
	}
	return students, false, nil
}

func (s *FormationStore) CreateStudent(ctx context.Context, st *domain.Student) error {
	if st.ID == 0 {
		st.ID = common.UUIDint64()
	}
	if st.EnrollmentDate.IsZero() {
		st.EnrollmentDate = time.Now()
	}
	st.Status = common.IfEmptyStr(st.Status, "active")
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return err
	}
	s.bus.Publish(TopicStudentsChanged)
	return nil
}

func (s *FormationStore) ListEnrollments(ctx context.Context) (enrollments []domain.StudentEnrollment, degraded bool, err error) {
	err = s.db.WithContext(ctx).
		Preload("Student").Preload("Formation").
		Order("enrollment_date DESC").Find(&enrollments).Error
	if err != nil {
		zap.L().Warn("enrollment list degraded to local mirror", zap.Error(err))
		local := []domain.StudentEnrollment{}
		s.fb.ReadOr(enrollmentsCollection, &local)
		return local, true, nil
	}
	if werr := s.fb.Write(enrollmentsCollection, enrollments); werr == nil {
		_ = s.fb.ClearUnsynced(enrollmentsCollection)
	}
	return enrollments, false, nil
}

// Enroll creates the enrollment and consumes one seat in the same
// transaction. A formation with no seats left fails with ErrFormationFull.
func (s *FormationStore) Enroll(ctx context.Context, e *domain.StudentEnrollment) error {
	if e.ID == 0 {
		e.ID = common.UUIDint64()
	}
	if e.EnrollmentDate.IsZero() {
		e.EnrollmentDate = time.Now()
	}
	e.Status = common.IfEmptyStr(e.Status, domain.EnrollmentStatusActive)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Formation{}).
			Where("id = ? AND current_participants < max_participants", e.FormationID).
			Updates(map[string]interface{}{
				"current_participants": gorm.Expr("current_participants + 1"),
				"updated_at":           time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(domain.ErrFormationFull, "formation %d", e.FormationID)
		}
		return tx.Omit("Student", "Formation").Create(e).Error
	})
	if err != nil {
		return err
	}
	s.bus.Publish(TopicEnrollmentsChanged)
	s.bus.Publish(TopicFormationsChanged)
	return nil
}

// RecordPayment adds amount to the enrollment's paid total, capped at the
// amount due.
func (s *FormationStore) RecordPayment(ctx context.Context, enrollmentID int64, amount float64) (*domain.StudentEnrollment, error) {
	if amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	var e domain.StudentEnrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", enrollmentID).First(&e).Error; err != nil {
			return err
		}
		if e.PaidAmount+amount > e.TotalAmount {
			return errors.Errorf("payment exceeds amount due: %.2f remaining", e.TotalAmount-e.PaidAmount)
		}
		e.PaidAmount += amount
		e.UpdatedAt = time.Now()
		return tx.Model(&domain.StudentEnrollment{}).Where("id = ?", enrollmentID).
			Updates(map[string]interface{}{"paid_amount": e.PaidAmount, "updated_at": e.UpdatedAt}).Error
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicEnrollmentsChanged)
	return &e, nil
}
