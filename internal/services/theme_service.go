package services

import (
	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/models"
	"budgetapp/internal/store"
)

// themeService reads and writes the shared theme preference.
type themeService struct {
	store store.Store
}

// NewThemeService creates a new ThemeServicer.
func NewThemeService(st store.Store) ThemeServicer {
	return &themeService{store: st}
}

// Theme returns the stored theme. A missing or unknown value yields the
// default theme.
func (s *themeService) Theme() (models.Theme, error) {
	raw, ok, err := s.store.Get(store.ThemeKey)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return models.DefaultTheme, nil
	}
	theme, valid := models.ParseTheme(raw)
	if !valid {
		logger.Get().Warnw("ignoring unknown stored theme", "theme", raw)
		return models.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme validates and stores a theme name.
func (s *themeService) SetTheme(name string) (models.Theme, error) {
	theme, ok := models.ParseTheme(name)
	if !ok {
		return "", apperrors.WithMessage(apperrors.ErrInvalidTheme, "Unknown theme: "+name)
	}
	if err := s.store.Set(store.ThemeKey, string(theme)); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return theme, nil
}
