package workspace

import "github.com/starford/workbench/internal/models"

// UI returns the current navigation state.
func (s *Store) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// SetCurrentView switches the active screen.
func (s *Store) SetCurrentView(v models.View) error {
	return s.ApplyUI(models.UIPatch{CurrentView: &v})
}

// SetSidebarOpen shows or hides the sidebar.
func (s *Store) SetSidebarOpen(open bool) {
	_ = s.ApplyUI(models.UIPatch{SidebarOpen: &open})
}

// ToggleSidebar flips sidebar visibility.
func (s *Store) ToggleSidebar() {
	s.editUI(func(ui *UIState) { ui.SidebarOpen = !ui.SidebarOpen })
}

// SetCommandPaletteOpen shows or hides the command palette.
func (s *Store) SetCommandPaletteOpen(open bool) {
	_ = s.ApplyUI(models.UIPatch{CommandPaletteOpen: &open})
}

// SetTheme changes the color scheme.
func (s *Store) SetTheme(t models.Theme) error {
	return s.ApplyUI(models.UIPatch{Theme: &t})
}

// ApplyUI sets every non-nil field of p.
func (s *Store) ApplyUI(p models.UIPatch) error {
	if err := p.Validate(); err != nil {
		return invalid(err)
	}
	s.editUI(func(ui *UIState) {
		if p.CurrentView != nil && *p.CurrentView != "" {
			ui.CurrentView = *p.CurrentView
		}
		if p.SidebarOpen != nil {
			ui.SidebarOpen = *p.SidebarOpen
		}
		if p.CommandPaletteOpen != nil {
			ui.CommandPaletteOpen = *p.CommandPaletteOpen
		}
		if p.Theme != nil && *p.Theme != "" {
			ui.Theme = *p.Theme
		}
	})
	return nil
}

func (s *Store) editUI(fn func(*UIState)) {
	_ = s.mutate(func() []Event {
		fn(&s.ui)
		return []Event{{Collection: CollectionUI, Kind: KindUpdated}}
	})
}
