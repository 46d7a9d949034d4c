package readstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reservations-api/internal/domain/listing"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/usecase/queries"

	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

const topUsersLimit = 10

type reservationRecord struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name"`
	CreatedBy int64     `bun:"created_by"`
	Address   string    `bun:"address"`
	Lat       float64   `bun:"lat"`
	Lng       float64   `bun:"lng"`
	State     string    `bun:"state"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`

	CreatorName  string   `bun:"creator_name,scanonly"`
	CreatorEmail string   `bun:"creator_email,scanonly"`
	CreatorRole  string   `bun:"creator_role,scanonly"`
	DistanceKm   *float64 `bun:"distance_km,scanonly"`
}

// text columns sort bytewise so ordering does not depend on the database locale
var sortColumns = map[string]string{
	listing.SortID:        "r.id",
	listing.SortName:      `r.name COLLATE "C"`,
	listing.SortState:     `r.state COLLATE "C"`,
	listing.SortCreatedAt: "r.created_at",
	listing.SortUpdatedAt: "r.updated_at",
	listing.SortDistance:  "distance_km",
}

// ReservationSearchStore runs listing specs and aggregates through bun.
type ReservationSearchStore struct {
	db *bun.DB
}

func NewReservationSearchStore(db *bun.DB) *ReservationSearchStore {
	return &ReservationSearchStore{db: db}
}

// Search returns the requested page and the total number of matches.
func (s *ReservationSearchStore) Search(ctx context.Context, spec *listing.Spec) ([]*queries.ReservationView, int, error) {
	var records []reservationRecord

	q, err := s.searchQuery(&records, spec)
	if err != nil {
		return nil, 0, err
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to search reservations", err)
	}

	views := make([]*queries.ReservationView, 0, len(records))
	for i := range records {
		v, err := recordToView(&records[i])
		if err != nil {
			return nil, 0, infra.WrapRepoErr("failed to map reservation record", err)
		}
		views = append(views, v)
	}
	return views, total, nil
}

func (s *ReservationSearchStore) searchQuery(dest *[]reservationRecord, spec *listing.Spec) (*bun.SelectQuery, error) {
	q := s.db.NewSelect().
		Model(dest).
		ColumnExpr("r.*").
		ColumnExpr("u.name AS creator_name, u.email AS creator_email, u.role AS creator_role").
		Join("JOIN users AS u ON u.id = r.created_by")

	if spec.Geo != nil {
		q = q.ColumnExpr("? AS distance_km", haversineExpr(spec.Geo.Center))
	}

	for _, p := range spec.Predicates {
		var err error
		if q, err = applyPredicate(q, p); err != nil {
			return nil, err
		}
	}

	for _, key := range spec.Order {
		column, ok := sortColumns[key.Field]
		if !ok {
			return nil, infra.WrapRepoErr(fmt.Sprintf("unsupported sort field %q", key.Field), nil)
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		q = q.OrderExpr(column + " " + dir)
	}

	return q.Limit(spec.Size).Offset(spec.Offset()), nil
}

func applyPredicate(q *bun.SelectQuery, p listing.Predicate) (*bun.SelectQuery, error) {
	switch p := p.(type) {
	case listing.OwnerScope:
		return q.Where("r.created_by = ?", p.OwnerID), nil
	case listing.TextSearch:
		pattern := likePattern(p.Term)
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("r.name ILIKE ?", pattern).
				WhereOr("r.address ILIKE ?", pattern).
				WhereOr("u.name ILIKE ?", pattern).
				WhereOr("u.email ILIKE ?", pattern)
		}), nil
	case listing.StateEquals:
		return q.Where("r.state = ?", p.State.String()), nil
	case listing.CreatorIDEquals:
		return q.Where("r.created_by = ?", p.ID), nil
	case listing.CreatorSearch:
		pattern := likePattern(p.Term)
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("u.name ILIKE ?", pattern).WhereOr("u.email ILIKE ?", pattern)
		}), nil
	case listing.CreatedAfter:
		return q.Where("r.created_at >= ?", p.From), nil
	case listing.CreatedBefore:
		return q.Where("r.created_at < ?", p.Until), nil
	case listing.LatEquals:
		return q.Where("r.lat = ?", p.Value), nil
	case listing.LngEquals:
		return q.Where("r.lng = ?", p.Value), nil
	case listing.GeoProximity:
		return q.Where("? <= ?", haversineExpr(p.Center), p.RadiusKm), nil
	default:
		return nil, infra.WrapRepoErr(fmt.Sprintf("unsupported predicate %T", p), nil)
	}
}

// haversineExpr mirrors listing.Haversine so SQL and in-memory results agree.
func haversineExpr(center listing.Point) schema.QueryWithArgs {
	return bun.SafeQuery(
		"2 * ? * ASIN(SQRT(LEAST(1, "+
			"POWER(SIN(RADIANS(r.lat - ?) / 2), 2) + "+
			"COS(RADIANS(?)) * COS(RADIANS(r.lat)) * POWER(SIN(RADIANS(r.lng - ?) / 2), 2))))",
		listing.EarthRadiusKm, center.Lat, center.Lat, center.Lng,
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func recordToView(rec *reservationRecord) (*queries.ReservationView, error) {
	var v queries.ReservationView
	if err := copier.Copy(&v, rec); err != nil {
		return nil, err
	}
	v.State = reservation.State(rec.State)
	v.Creator = queries.UserSummary{
		ID:    rec.CreatedBy,
		Name:  rec.CreatorName,
		Email: rec.CreatorEmail,
		Role:  rec.CreatorRole,
	}
	return &v, nil
}

type stateCount struct {
	State string `bun:"state"`
	Count int    `bun:"count"`
}

type userCount struct {
	ID    int64  `bun:"id"`
	Name  string `bun:"name"`
	Count int    `bun:"count"`
}

// Stats aggregates reservations, limited to ownerID's when set.
func (s *ReservationSearchStore) Stats(ctx context.Context, ownerID *int64) (*queries.ReservationStats, error) {
	scope := func(q *bun.SelectQuery) *bun.SelectQuery {
		if ownerID != nil {
			return q.Where("r.created_by = ?", *ownerID)
		}
		return q
	}

	var (
		total   int
		byState []stateCount
		top     []userCount
	)
	// one snapshot for all three aggregates
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		var err error
		total, err = tx.NewSelect().
			Model((*reservationRecord)(nil)).
			Apply(scope).
			Count(ctx)
		if err != nil {
			return infra.WrapRepoErr("failed to count reservations", err)
		}

		err = tx.NewSelect().
			Model((*reservationRecord)(nil)).
			ColumnExpr("r.state AS state, count(*) AS count").
			Apply(scope).
			GroupExpr("r.state").
			Scan(ctx, &byState)
		if err != nil {
			return infra.WrapRepoErr("failed to count reservations by state", err)
		}

		err = tx.NewSelect().
			Model((*reservationRecord)(nil)).
			ColumnExpr("u.id AS id, u.name AS name, count(*) AS count").
			Join("JOIN users AS u ON u.id = r.created_by").
			Apply(scope).
			GroupExpr("u.id, u.name").
			OrderExpr("count DESC, u.id ASC").
			Limit(topUsersLimit).
			Scan(ctx, &top)
		if err != nil {
			return infra.WrapRepoErr("failed to rank reservation creators", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &queries.ReservationStats{
		TotalReservations: total,
		States:            make(map[string]int, len(byState)),
		TopUsers:          make([]queries.UserReservationCount, 0, len(top)),
	}
	for _, sc := range byState {
		stats.States[sc.State] = sc.Count
	}
	for _, uc := range top {
		stats.TopUsers = append(stats.TopUsers, queries.UserReservationCount{ID: uc.ID, Name: uc.Name, Count: uc.Count})
	}
	return stats, nil
}
