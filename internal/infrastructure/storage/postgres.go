package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"echosignal/internal/domain"
	"echosignal/internal/metrics"
	"echosignal/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore persists articles and taxonomy into Postgres.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// InitSchema creates the tables when they do not exist yet.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// GetOrCreateCategory resolves a category by slug, creating it if absent.
func (s *PostgresStore) GetOrCreateCategory(ctx context.Context, name string) (domain.Category, error) {
	id, nm, slug, err := s.getOrCreateTaxonomy(ctx, "categories", "category", name)
	if err != nil {
		return domain.Category{}, err
	}
	return domain.Category{ID: id, Name: nm, Slug: slug}, nil
}

// GetOrCreateTag resolves a tag by slug, creating it if absent.
func (s *PostgresStore) GetOrCreateTag(ctx context.Context, name string) (domain.Tag, error) {
	id, nm, slug, err := s.getOrCreateTaxonomy(ctx, "tags", "tag", name)
	if err != nil {
		return domain.Tag{}, err
	}
	return domain.Tag{ID: id, Name: nm, Slug: slug}, nil
}

// getOrCreateTaxonomy keys on the slug: a name that normalizes to an existing
// slug resolves to the existing row. The insert is conflict-safe, so a lost
// race falls through to the re-select.
func (s *PostgresStore) getOrCreateTaxonomy(ctx context.Context, table, kind, name string) (int64, string, string, error) {
	slug := domain.Slugify(name)

	id, nm, err := s.findTaxonomyBySlug(ctx, table, slug)
	if err == nil {
		return id, nm, slug, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, "", "", fmt.Errorf("find %s %q: %w", kind, slug, err)
	}

	query, args, err := s.builder.
		Insert(table).
		Columns("name", "slug").
		Values(name, slug).
		Suffix("ON CONFLICT (slug) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, "", "", fmt.Errorf("build %s insert: %w", kind, err)
	}

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == nil {
		metrics.SlugsGenerated.WithLabelValues(kind).Inc()
		s.debug("taxonomy created", "kind", kind, "name", name, "slug", slug)
		return id, name, slug, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, "", "", fmt.Errorf("insert %s %q: %w", kind, slug, err)
	}

	// Lost the race; the row exists now.
	id, nm, err = s.findTaxonomyBySlug(ctx, table, slug)
	if err != nil {
		return 0, "", "", fmt.Errorf("reselect %s %q: %w", kind, slug, err)
	}
	return id, nm, slug, nil
}

func (s *PostgresStore) findTaxonomyBySlug(ctx context.Context, table, slug string) (int64, string, error) {
	query, args, err := s.builder.
		Select("id", "name").
		From(table).
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return 0, "", fmt.Errorf("build select: %w", err)
	}

	var id int64
	var name string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &name); err != nil {
		return 0, "", err
	}
	return id, name, nil
}

// FindArticleByURL returns the article with the canonical URL, with its
// taxonomy loaded, or nil when none exists.
func (s *PostgresStore) FindArticleByURL(ctx context.Context, canonicalURL string) (*domain.Article, error) {
	query, args, err := s.builder.
		Select("id", "title", "summary", "source_name", "original_url",
			"publication_date", "authors", "full_text_content", "status",
			"created_at", "updated_at", "published_at").
		From("articles").
		Where(sq.Eq{"original_url": canonicalURL}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article select: %w", err)
	}

	var article domain.Article
	var status string
	var publicationDate, publishedAt sql.NullTime
	var body sql.NullString

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&article.ID, &article.Title, &article.Summary, &article.SourceName,
		&article.CanonicalURL, &publicationDate, &article.Authors, &body,
		&status, &article.CreatedAt, &article.UpdatedAt, &publishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article: %w", err)
	}

	article.Status = domain.Status(status)
	article.BodyText = body.String
	if publicationDate.Valid {
		article.PublicationDate = publicationDate.Time
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}

	if article.Categories, err = s.loadCategories(ctx, article.ID); err != nil {
		return nil, err
	}
	if article.Tags, err = s.loadTags(ctx, article.ID); err != nil {
		return nil, err
	}

	return &article, nil
}

func (s *PostgresStore) loadCategories(ctx context.Context, articleID int64) ([]domain.Category, error) {
	query, args, err := s.builder.
		Select("c.id", "c.name", "c.slug").
		From("categories c").
		Join("article_categories ac ON ac.category_id = c.id").
		Where(sq.Eq{"ac.article_id": articleID}).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) loadTags(ctx context.Context, articleID int64) ([]domain.Tag, error) {
	query, args, err := s.builder.
		Select("t.id", "t.name", "t.slug").
		From("tags t").
		Join("article_tags att ON att.tag_id = t.id").
		Where(sq.Eq{"att.article_id": articleID}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tags select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateArticle inserts the draft and attaches taxonomy inside one
// transaction. The insert is conflict-safe on original_url: when another
// writer created the article between lookup and insert, the existing record
// is returned and nothing is attached.
func (s *PostgresStore) CreateArticle(ctx context.Context, draft domain.Draft, categories []domain.Category, tags []domain.Tag) (domain.Article, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Article{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.builder.
		Insert("articles").
		Columns("title", "summary", "source_name", "original_url",
			"publication_date", "authors", "full_text_content", "status").
		Values(draft.Title, draft.Summary, draft.SourceName, draft.CanonicalURL,
			draft.PublicationDate, draft.Authors, draft.BodyText, string(domain.StatusDraft)).
		Suffix("ON CONFLICT (original_url) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build article insert: %w", err)
	}

	var id int64
	var createdAt, updatedAt time.Time
	err = tx.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict: the URL was inserted concurrently. Surface that record.
		existing, findErr := s.FindArticleByURL(ctx, draft.CanonicalURL)
		if findErr != nil {
			return domain.Article{}, findErr
		}
		if existing == nil {
			return domain.Article{}, fmt.Errorf("article %s vanished after conflict", draft.CanonicalURL)
		}
		return *existing, nil
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	if err := s.attach(ctx, tx, "article_categories", "category_id", id, categoryIDs(categories)); err != nil {
		return domain.Article{}, err
	}
	if err := s.attach(ctx, tx, "article_tags", "tag_id", id, tagIDs(tags)); err != nil {
		return domain.Article{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Article{}, fmt.Errorf("commit tx: %w", err)
	}

	s.debug("article created", "id", id, "url", draft.CanonicalURL)

	return domain.Article{
		ID:              id,
		Title:           draft.Title,
		Summary:         draft.Summary,
		SourceName:      draft.SourceName,
		CanonicalURL:    draft.CanonicalURL,
		PublicationDate: draft.PublicationDate,
		Authors:         draft.Authors,
		BodyText:        draft.BodyText,
		Status:          domain.StatusDraft,
		Categories:      categories,
		Tags:            tags,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func (s *PostgresStore) attach(ctx context.Context, tx *sql.Tx, table, column string, articleID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	insert := s.builder.Insert(table).Columns("article_id", column)
	for _, id := range ids {
		insert = insert.Values(articleID, id)
	}

	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("attach %s: %w", table, err)
	}
	return nil
}

func categoryIDs(categories []domain.Category) []int64 {
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func tagIDs(tags []domain.Tag) []int64 {
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *PostgresStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
