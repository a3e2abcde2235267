package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
)

// CatalogService handles admin writes to categories, workspaces, zones and
// sidebar settings. Writes go to the document store and return once it
// acknowledges; read models refresh from the following change notification.
type CatalogService struct {
	docs    domain.DocumentStore
	objects domain.ObjectStore
	clock   clock.Clock
}

// NewCatalogService creates a new catalog service
func NewCatalogService(docs domain.DocumentStore, objects domain.ObjectStore, c clock.Clock) *CatalogService {
	if c == nil {
		c = clock.NewSystem()
	}
	return &CatalogService{docs: docs, objects: objects, clock: c}
}

func (s *CatalogService) now() int64 {
	return s.clock.Now().UnixMilli()
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	c := domain.Category{ID: uuid.NewString(), Name: name, UpdatedAt: s.now()}
	if err := put(ctx, s.docs, domain.CategoriesCollection, c.ID, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

// RenameCategory renames a category
func (s *CatalogService) RenameCategory(ctx context.Context, id string, input domain.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	c, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.UpdatedAt = s.now()

	if err := put(ctx, s.docs, domain.CategoriesCollection, c.ID, c); err != nil {
		return nil, fmt.Errorf("failed to rename category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes a category with all its workspaces, their zones and
// floor plans.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.category(ctx, id); err != nil {
		return err
	}

	docs, err := s.docs.List(ctx, domain.WorkspacesCollection, map[string]string{"categoryId": id})
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	for _, doc := range docs {
		ws, err := domain.DecodeWorkspace(doc)
		if err != nil {
			// Still remove it so no orphan is left behind.
			log.Warn().Err(err).Str("workspace_id", doc.ID).Msg("Deleting malformed workspace")
			ws = domain.Workspace{ID: doc.ID}
		}
		if err := s.deleteWorkspace(ctx, ws); err != nil {
			return err
		}
	}

	if err := s.docs.Delete(ctx, domain.CategoriesCollection, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := s.pruneSidebar(ctx, id); err != nil {
		return err
	}

	log.Info().Str("category_id", id).Int("workspaces", len(docs)).Msg("Category deleted")
	return nil
}

// CreateWorkspace creates a workspace with its mandatory floor plan. When
// NewCategory is set a category of that name is created first.
func (s *CatalogService) CreateWorkspace(ctx context.Context, input domain.WorkspaceCreate, upload *domain.Plan, r io.Reader) (*domain.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if upload == nil || r == nil {
		return nil, domain.ErrPlanRequired
	}
	data, plan, err := readPlan(*upload, r)
	if err != nil {
		return nil, err
	}

	categoryID := input.CategoryID
	if newName := strings.TrimSpace(input.NewCategory); newName != "" {
		c, err := s.CreateCategory(ctx, domain.CategoryInput{Name: newName})
		if err != nil {
			return nil, err
		}
		categoryID = c.ID
	} else if _, err := s.category(ctx, categoryID); err != nil {
		return nil, err
	}

	ws := domain.Workspace{
		ID:         uuid.NewString(),
		Name:       name,
		CategoryID: categoryID,
		PlanWidth:  input.PlanWidth,
		PlanHeight: input.PlanHeight,
		UpdatedAt:  s.now(),
	}

	key := domain.PlanKey(ws.ID, plan.Filename)
	info, err := s.objects.Put(ctx, key, plan.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload plan: %w", err)
	}
	ws.PlanURL = info.URL
	if ws.PlanWidth == 0 || ws.PlanHeight == 0 {
		ws.PlanWidth, ws.PlanHeight = plan.Width, plan.Height
	}

	if err := put(ctx, s.docs, domain.WorkspacesCollection, ws.ID, ws); err != nil {
		_ = s.objects.Delete(ctx, key)
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &ws, nil
}

// UpdateWorkspace renames a workspace or moves it to another category
func (s *CatalogService) UpdateWorkspace(ctx context.Context, id string, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	ws, err := s.workspace(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		ws.Name = name
	}
	if input.CategoryID != nil && *input.CategoryID != ws.CategoryID {
		if _, err := s.category(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		ws.CategoryID = *input.CategoryID
	}
	ws.UpdatedAt = s.now()

	if err := put(ctx, s.docs, domain.WorkspacesCollection, ws.ID, ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return &ws, nil
}

// UploadPlan replaces a workspace's floor plan
func (s *CatalogService) UploadPlan(ctx context.Context, id string, plan domain.Plan, r io.Reader) (*domain.Workspace, error) {
	ws, err := s.workspace(ctx, id)
	if err != nil {
		return nil, err
	}
	data, plan, err := readPlan(plan, r)
	if err != nil {
		return nil, err
	}

	key := domain.PlanKey(ws.ID, plan.Filename)
	info, err := s.objects.Put(ctx, key, plan.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload plan: %w", err)
	}

	if old, ok := domain.ObjectKeyFromURL(ws.PlanURL); ok && old != key {
		if err := s.objects.Delete(ctx, old); err != nil {
			log.Warn().Err(err).Str("key", old).Msg("Failed to delete previous plan")
		}
	}

	ws.PlanURL = info.URL
	ws.PlanWidth, ws.PlanHeight = plan.Width, plan.Height
	ws.UpdatedAt = s.now()
	if err := put(ctx, s.docs, domain.WorkspacesCollection, ws.ID, ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return &ws, nil
}

// DeleteWorkspace removes a workspace, its zones and its floor plan
func (s *CatalogService) DeleteWorkspace(ctx context.Context, id string) error {
	ws, err := s.workspace(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteWorkspace(ctx, ws)
}

// deleteWorkspace removes zones first so no zone outlives its workspace.
func (s *CatalogService) deleteWorkspace(ctx context.Context, ws domain.Workspace) error {
	n, err := s.docs.DeleteWhere(ctx, domain.ZonesCollection, map[string]string{"workspaceId": ws.ID})
	if err != nil {
		return fmt.Errorf("failed to delete zones: %w", err)
	}

	if key, ok := domain.ObjectKeyFromURL(ws.PlanURL); ok {
		if err := s.objects.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to delete plan")
		}
	}

	if err := s.docs.Delete(ctx, domain.WorkspacesCollection, ws.ID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	log.Info().Str("workspace_id", ws.ID).Int("zones", n).Msg("Workspace deleted")
	return nil
}

// CreateZone creates a zone on an existing workspace
func (s *CatalogService) CreateZone(ctx context.Context, input domain.ZoneInput) (*domain.Zone, error) {
	if err := checkRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if _, err := s.workspace(ctx, input.WorkspaceID); err != nil {
		return nil, err
	}

	z := domain.ZoneFromInput(uuid.NewString(), input, s.now())
	if err := put(ctx, s.docs, domain.ZonesCollection, z.ID, z); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return &z, nil
}

// UpdateZone replaces a zone's fields. The last write wins.
func (s *CatalogService) UpdateZone(ctx context.Context, id string, input domain.ZoneInput) (*domain.Zone, error) {
	if err := checkRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if _, err := get(ctx, s.docs, domain.ZonesCollection, id, domain.ErrZoneNotFound, domain.DecodeZone); err != nil {
		return nil, err
	}
	if _, err := s.workspace(ctx, input.WorkspaceID); err != nil {
		return nil, err
	}

	z := domain.ZoneFromInput(id, input, s.now())
	if err := put(ctx, s.docs, domain.ZonesCollection, z.ID, z); err != nil {
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}
	return &z, nil
}

// DeleteZone removes a zone
func (s *CatalogService) DeleteZone(ctx context.Context, id string) error {
	if _, err := s.docs.Get(ctx, domain.ZonesCollection, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrZoneNotFound
		}
		return fmt.Errorf("failed to get zone: %w", err)
	}
	if err := s.docs.Delete(ctx, domain.ZonesCollection, id); err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	return nil
}

// SaveSidebar stores the sidebar settings. Ids that no longer name a
// category are dropped; a non-empty order is completed with the remaining
// categories.
func (s *CatalogService) SaveSidebar(ctx context.Context, input domain.SidebarInput) (*domain.SidebarSetting, error) {
	cats, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}

	setting := domain.SidebarSetting{
		CategoryIDs: knownIDs(dedupe(input.CategoryIDs), cats),
		Order:       []string{},
	}
	if len(input.Order) > 0 {
		setting.Order = domain.MergeOrder(input.Order, cats)
	}
	return s.saveSidebar(ctx, setting)
}

// MoveSidebarCategory moves one category to the position held by another in
// the sidebar order.
func (s *CatalogService) MoveSidebarCategory(ctx context.Context, input domain.SidebarMove) (*domain.SidebarSetting, error) {
	cats, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(knownIDs([]string{input.From, input.To}, cats)) != 2 {
		return nil, domain.ErrCategoryNotFound
	}

	setting, err := s.sidebar(ctx)
	if err != nil {
		return nil, err
	}
	setting.CategoryIDs = knownIDs(setting.CategoryIDs, cats)
	setting.Order = domain.Reorder(domain.MergeOrder(setting.Order, cats), input.From, input.To)
	return s.saveSidebar(ctx, setting)
}

// pruneSidebar removes a deleted category from the stored settings.
func (s *CatalogService) pruneSidebar(ctx context.Context, id string) error {
	setting, err := s.sidebar(ctx)
	if err != nil {
		return err
	}
	ids, order := without(setting.CategoryIDs, id), without(setting.Order, id)
	if len(ids) == len(setting.CategoryIDs) && len(order) == len(setting.Order) {
		return nil
	}
	setting.CategoryIDs, setting.Order = ids, order
	_, err = s.saveSidebar(ctx, setting)
	return err
}

func (s *CatalogService) saveSidebar(ctx context.Context, setting domain.SidebarSetting) (*domain.SidebarSetting, error) {
	setting.UpdatedAt = s.now()
	if err := put(ctx, s.docs, domain.SettingsCollection, domain.SidebarSettingID, setting); err != nil {
		return nil, fmt.Errorf("failed to save sidebar settings: %w", err)
	}
	return &setting, nil
}

// sidebar reads the stored settings; an absent document is the zero value.
func (s *CatalogService) sidebar(ctx context.Context) (domain.SidebarSetting, error) {
	setting, err := get(ctx, s.docs, domain.SettingsCollection, domain.SidebarSettingID, domain.ErrNotFound, domain.DecodeSidebar)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrMalformedDocument) {
		return domain.SidebarSetting{}, nil
	}
	return setting, err
}

// categories lists the decodable categories in sidebar order: by name, then id.
func (s *CatalogService) categories(ctx context.Context) ([]domain.Category, error) {
	docs, err := s.docs.List(ctx, domain.CategoriesCollection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	cats := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		if c, err := domain.DecodeCategory(doc); err == nil {
			cats = append(cats, c)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})
	return cats, nil
}

func (s *CatalogService) category(ctx context.Context, id string) (domain.Category, error) {
	return get(ctx, s.docs, domain.CategoriesCollection, id, domain.ErrCategoryNotFound, domain.DecodeCategory)
}

func (s *CatalogService) workspace(ctx context.Context, id string) (domain.Workspace, error) {
	return get(ctx, s.docs, domain.WorkspacesCollection, id, domain.ErrWorkspaceNotFound, domain.DecodeWorkspace)
}

// readPlan buffers an uploaded plan image and reads its natural size. Formats
// the standard decoders do not know keep a zero size and render in the
// default viewport.
func readPlan(plan domain.Plan, r io.Reader) ([]byte, domain.Plan, error) {
	if !strings.HasPrefix(plan.ContentType, "image/") {
		return nil, plan, domain.ErrUnsupportedFile
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, plan, fmt.Errorf("failed to read plan: %w", err)
	}
	if len(data) == 0 {
		return nil, plan, domain.ErrPlanRequired
	}

	plan.Size = int64(len(data))
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		plan.Width, plan.Height = float64(cfg.Width), float64(cfg.Height)
	}
	return data, plan, nil
}

func checkRange(start, end string) error {
	for _, d := range []string{start, end} {
		if d != "" && !daterange.Valid(d) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidDate, d)
		}
	}
	if start != "" && end != "" && end < start {
		return domain.ErrInvalidDateRange
	}
	return nil
}

func knownIDs(ids []string, cats []domain.Category) []string {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			out = append(out, id)
		}
	}
	return out
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}
