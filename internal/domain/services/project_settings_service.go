package services

import (
	"context"

	"github.com/athebyme/struct-commerce-sync/internal/domain/mapping"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

const languagesUpdateFailed = "Failed to update the languages in Commercetools."

// ProjectSettingsService переносит языки Struct в настройки проекта Commercetools
type ProjectSettingsService struct {
	commerce interfaces.CommercePort
	pim      interfaces.PIMPort
	errors   *ErrorService
	logger   interfaces.LoggerPort
}

// NewProjectSettingsService создает сервис настроек проекта
func NewProjectSettingsService(commerce interfaces.CommercePort, pim interfaces.PIMPort, errs *ErrorService, logger interfaces.LoggerPort) *ProjectSettingsService {
	return &ProjectSettingsService{
		commerce: commerce,
		pim:      pim,
		errors:   errs,
		logger:   logger.WithField("component", "project_settings_service"),
	}
}

// CreateLanguages читает языки Struct и добавляет в проект те, которых там еще нет
func (s *ProjectSettingsService) CreateLanguages(ctx context.Context) *models.Project {
	languages, err := s.pim.GetLanguages(ctx)
	if err != nil {
		fail(ctx, s.logger, s.errors, languagesUpdateFailed, err.Error())
		return nil
	}
	return s.ApplyLanguages(ctx, languages)
}

// ApplyLanguages добавляет в проект переданные языки Struct.
// Языки проекта, отсутствующие в Struct, сохраняются.
func (s *ProjectSettingsService) ApplyLanguages(ctx context.Context, languages []models.LanguageModel) *models.Project {
	codes := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		code, ok := mapping.TwoLetterISO(l.CultureCode)
		if !ok {
			s.logger.WarnWithContext(ctx, "Нераспознанный код культуры пропущен", interfaces.LogField{Key: "culture_code", Value: l.CultureCode})
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		s.logger.InfoWithContext(ctx, "В Struct нет языков для переноса")
		return nil
	}

	current := s.commerce.GetProject(ctx)
	if !current.IsOK() {
		fail(ctx, s.logger, s.errors, languagesUpdateFailed, current.Message)
		return nil
	}
	project := current.Value

	existing := make(map[string]struct{}, len(project.Languages))
	for _, l := range project.Languages {
		existing[l] = struct{}{}
	}
	merged := append([]string{}, project.Languages...)
	for _, code := range codes {
		if _, ok := existing[code]; !ok {
			merged = append(merged, code)
		}
	}
	if len(merged) == len(project.Languages) {
		s.logger.InfoWithContext(ctx, "Все языки уже есть в проекте")
		return nil
	}

	res := s.commerce.UpdateProject(ctx, models.Update{
		Version: project.Version,
		Actions: []models.UpdateAction{models.ProjectChangeLanguages{Languages: merged}},
	})
	if !res.IsOK() {
		fail(ctx, s.logger, s.errors, languagesUpdateFailed, res.Message)
		return nil
	}
	s.logger.InfoWithContext(ctx, "Языки проекта обновлены",
		interfaces.LogField{Key: "project", Value: project.Key},
		interfaces.LogField{Key: "languages", Value: merged},
	)
	return res.Value
}
