package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

type StudentService struct {
	api      StudentAPI
	validate *validator.Validate
	logger   *zap.Logger
}

func NewStudentService(api StudentAPI, validate *validator.Validate, logger *zap.Logger) *StudentService {
	return &StudentService{
		api:      api,
		validate: newValidator(validate),
		logger:   logger,
	}
}

// List возвращает учеников, отсортированных по имени
func (s *StudentService) List(ctx context.Context, token string) ([]model.Student, error) {
	students, err := s.api.ListStudents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].Name) < strings.ToLower(students[j].Name)
	})
	return students, nil
}

// Get возвращает ученика по ID
func (s *StudentService) Get(ctx context.Context, token, id string) (*model.Student, error) {
	students, err := s.api.ListStudents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	for i := range students {
		if students[i].ID == id {
			return &students[i], nil
		}
	}
	return nil, ErrStudentNotFound
}

// FindByName возвращает первого ученика с таким именем без учёта регистра
func (s *StudentService) FindByName(ctx context.Context, token, name string) (*model.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrStudentNotFound
	}
	students, err := s.api.ListStudents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	for i := range students {
		if strings.EqualFold(strings.TrimSpace(students[i].Name), name) {
			return &students[i], nil
		}
	}
	return nil, ErrStudentNotFound
}

// Names возвращает имена учеников по ID
func (s *StudentService) Names(ctx context.Context, token string) (map[string]string, error) {
	students, err := s.api.ListStudents(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = st.Name
	}
	return names, nil
}

// Create создаёт ученика
func (s *StudentService) Create(ctx context.Context, token string, in model.StudentInput) (string, error) {
	in = normalizeStudent(in)
	if err := s.validate.Struct(in); err != nil {
		return "", fromValidator(err)
	}

	id, err := s.api.CreateStudent(ctx, token, in)
	if err != nil {
		return "", fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("Student created", zap.String("student_id", id))
	return id, nil
}

// Rename меняет имя ученика
func (s *StudentService) Rename(ctx context.Context, token, id, name string) error {
	in := normalizeStudent(model.StudentInput{Name: name})
	if err := s.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	if err := s.api.UpdateStudent(ctx, token, id, in); err != nil {
		return fmt.Errorf("rename student: %w", err)
	}
	return nil
}

// Delete удаляет ученика
func (s *StudentService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteStudent(ctx, token, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	s.logger.Info("Student deleted", zap.String("student_id", id))
	return nil
}

func normalizeStudent(in model.StudentInput) model.StudentInput {
	return model.StudentInput{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
}
