package service

import (
	"context"
	"errors"
	"liveroom-go/internal/apperr"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm/clause"
)

type fakeMessageRepo struct {
	mu        sync.Mutex
	rows      map[uint]model.WsMessage
	nextID    uint
	listCalls int
	mutations int
	listErr   error
	lastOrder clause.OrderBy
	lastPage  query.Page
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{rows: make(map[uint]model.WsMessage), nextID: 1}
}

func (r *fakeMessageRepo) Count(_ context.Context, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) FindOne(_ context.Context, id uint) (*model.WsMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *fakeMessageRepo) FindAndCountAll(_ context.Context, _ query.Predicate, order clause.OrderBy, page query.Page) ([]model.WsMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastOrder = order
	r.lastPage = page
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []model.WsMessage
	for _, m := range r.rows {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.WsMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	msg.ID = r.nextID
	r.nextID++
	r.rows[msg.ID] = *msg
	return nil
}

func (r *fakeMessageRepo) Update(_ context.Context, id uint, columns map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	m := r.rows[id]
	if v, ok := columns["content"]; ok {
		m.Content = v.(string)
	}
	if v, ok := columns["is_show"]; ok {
		m.IsShow = v.(int)
	}
	r.rows[id] = m
	return nil
}

func (r *fakeMessageRepo) Destroy(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	delete(r.rows, id)
	return nil
}

func (r *fakeMessageRepo) calls() (list, mutations int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls, r.mutations
}

type recordingNotifier struct {
	rooms []uint
}

func (n *recordingNotifier) Publish(roomID uint, _ model.WsMessage) {
	n.rooms = append(n.rooms, roomID)
}

type brokenStore struct{}

func (brokenStore) GetValue(context.Context, string) (string, bool, error) {
	return "", false, errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func (brokenStore) SetValueWithExpiry(context.Context, string, string, time.Duration) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func (brokenStore) DeletePrefix(context.Context, string) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newMessageCache(store cache.Store, clock *testClock) *cache.ListCache[model.PageResult[model.WsMessage]] {
	opts := cache.Options{TTL: 3 * time.Second, Keyspace: "test"}
	if clock != nil {
		opts.Now = clock.Now
	}
	return cache.NewListCache[model.PageResult[model.WsMessage]](store, opts)
}

func uintPtr(v uint) *uint { return &v }

const testMaxLength = 200

func TestWsMessageService_CreateLengthBoundary(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)
	ctx := context.Background()

	ok := &model.WsMessage{LiveRoomID: 1, Content: strings.Repeat("弹", testMaxLength)}
	if err := svc.Create(ctx, ok); err != nil {
		t.Fatalf("content of max length should pass: %v", err)
	}

	tooLong := &model.WsMessage{LiveRoomID: 1, Content: strings.Repeat("弹", testMaxLength+1)}
	err := svc.Create(ctx, tooLong)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	e, _ := apperr.As(err)
	if e.HTTPStatus != 400 || e.Code != apperr.CodeParamsError {
		t.Errorf("unexpected error surface: %+v", e)
	}
	if !strings.Contains(e.Message, "200") {
		t.Errorf("message should name the limit: %q", e.Message)
	}
	if _, mutations := repo.calls(); mutations != 1 {
		t.Errorf("mutations = %d, rejected create must not write", mutations)
	}
}

func TestWsMessageService_CreateNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewWsMessageService(newFakeMessageRepo(), nil, nil, notifier, testMaxLength)

	if err := svc.Create(context.Background(), &model.WsMessage{LiveRoomID: 9, Content: "hi"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(notifier.rooms) != 1 || notifier.rooms[0] != 9 {
		t.Errorf("notified rooms = %v", notifier.rooms)
	}
}

func TestWsMessageService_DeleteMissing(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)

	err := svc.Delete(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "42") {
		t.Errorf("error should name the id: %v", err)
	}
	if _, mutations := repo.calls(); mutations != 0 {
		t.Errorf("mutations = %d, want 0", mutations)
	}
}

func TestWsMessageService_DeleteExisting(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)
	ctx := context.Background()
	msg := &model.WsMessage{LiveRoomID: 1, Content: "x"}
	_ = svc.Create(ctx, msg)

	if err := svc.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := svc.Find(ctx, msg.ID)
	if err != nil || got != nil {
		t.Fatalf("Find after delete = %v, %v", got, err)
	}
}

func TestWsMessageService_Update(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)
	ctx := context.Background()

	content := "new"
	if err := svc.Update(ctx, 5, model.WsMessagePatch{Content: &content}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("update of missing row: %v", err)
	}

	msg := &model.WsMessage{LiveRoomID: 1, Content: "old", IsShow: 1}
	_ = svc.Create(ctx, msg)
	_, before := repo.calls()

	long := strings.Repeat("a", testMaxLength+1)
	if err := svc.Update(ctx, msg.ID, model.WsMessagePatch{Content: &long}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("too long update: %v", err)
	}
	if _, after := repo.calls(); after != before {
		t.Fatalf("rejected update wrote to the store")
	}

	if err := svc.Update(ctx, msg.ID, model.WsMessagePatch{Content: &content}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.UpdateIsShow(ctx, msg.ID, 0); err != nil {
		t.Fatalf("UpdateIsShow: %v", err)
	}
	got, _ := svc.Find(ctx, msg.ID)
	if got.Content != "new" || got.IsShow != 0 {
		t.Errorf("after update: %+v", got)
	}
}

func TestWsMessageService_EmptyRoomCachedWithinTTL(t *testing.T) {
	repo := newFakeMessageRepo()
	clock := &testClock{now: time.Unix(1700000000, 0)}
	svc := NewWsMessageService(repo, newMessageCache(cache.NewMemoryStore(100, time.Minute), clock), nil, nil, testMaxLength)
	ctx := context.Background()
	q := model.WsMessageQuery{LiveRoomID: uintPtr(7)}

	for i := 0; i < 2; i++ {
		res, err := svc.GetList(ctx, q)
		if err != nil {
			t.Fatalf("GetList #%d: %v", i, err)
		}
		if res.TotalItems != 0 || len(res.Items) != 0 || res.TotalPages != 0 {
			t.Fatalf("GetList #%d = %+v", i, res)
		}
		if res.Items == nil {
			t.Fatalf("items must be an empty slice, not nil")
		}
		clock.now = clock.now.Add(time.Second)
	}
	if list, _ := repo.calls(); list != 1 {
		t.Fatalf("store queried %d times, want 1", list)
	}

	clock.now = clock.now.Add(3 * time.Second)
	if _, err := svc.GetList(ctx, q); err != nil {
		t.Fatalf("GetList after ttl: %v", err)
	}
	if list, _ := repo.calls(); list != 2 {
		t.Fatalf("store queried %d times after ttl, want 2", list)
	}
}

func TestWsMessageService_StaleWithinTTLWithoutInvalidation(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, newMessageCache(cache.NewMemoryStore(100, time.Minute), nil), nil, nil, testMaxLength)
	ctx := context.Background()
	q := model.WsMessageQuery{LiveRoomID: uintPtr(7)}

	if _, err := svc.GetList(ctx, q); err != nil {
		t.Fatal(err)
	}
	_ = svc.Create(ctx, &model.WsMessage{LiveRoomID: 7, Content: "late"})

	res, _ := svc.GetList(ctx, q)
	if res.TotalItems != 0 {
		t.Fatalf("ttl strategy should serve the cached page, got %+v", res)
	}
}

func TestWsMessageService_DirectInvalidation(t *testing.T) {
	repo := newFakeMessageRepo()
	store := cache.NewMemoryStore(100, time.Minute)
	lc := newMessageCache(store, nil)
	svc := NewWsMessageService(repo, lc, cache.NewStoreInvalidator(store, "test"), nil, testMaxLength)
	ctx := context.Background()
	q := model.WsMessageQuery{LiveRoomID: uintPtr(7)}

	_, _ = svc.GetList(ctx, q)
	_ = svc.Create(ctx, &model.WsMessage{LiveRoomID: 7, Content: "fresh"})

	res, err := svc.GetList(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalItems != 1 {
		t.Fatalf("invalidated room should be re-queried, got %+v", res)
	}
	if list, _ := repo.calls(); list != 2 {
		t.Fatalf("store queried %d times, want 2", list)
	}
}

func TestWsMessageService_CacheFailureFailsOpen(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, newMessageCache(brokenStore{}, nil), cache.NewStoreInvalidator(brokenStore{}, "test"), nil, testMaxLength)
	ctx := context.Background()

	if err := svc.Create(ctx, &model.WsMessage{LiveRoomID: 7, Content: "hi"}); err != nil {
		t.Fatalf("Create with broken cache: %v", err)
	}
	for i := 0; i < 2; i++ {
		res, err := svc.GetList(ctx, model.WsMessageQuery{LiveRoomID: uintPtr(7)})
		if err != nil {
			t.Fatalf("GetList with broken cache: %v", err)
		}
		if res.TotalItems != 1 {
			t.Fatalf("unexpected result %+v", res)
		}
	}
	if list, _ := repo.calls(); list != 2 {
		t.Fatalf("every read should hit the store, got %d", list)
	}
}

func TestWsMessageService_NoScopeBypassesCache(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, newMessageCache(cache.NewMemoryStore(100, time.Minute), nil), nil, nil, testMaxLength)

	for i := 0; i < 2; i++ {
		if _, err := svc.GetList(context.Background(), model.WsMessageQuery{}); err != nil {
			t.Fatal(err)
		}
	}
	if list, _ := repo.calls(); list != 2 {
		t.Fatalf("list without live_room_id must not be cached, store queried %d times", list)
	}
}

func TestWsMessageService_GetListErrors(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)
	ctx := context.Background()

	_, err := svc.GetList(ctx, model.WsMessageQuery{ListParams: model.ListParams{OrderBy: "sideways"}})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad direction: %v", err)
	}
	if list, _ := repo.calls(); list != 0 {
		t.Fatalf("bad direction must be rejected before querying")
	}

	repo.listErr = errors.New("Unknown column 'nope' in 'order clause'")
	_, err = svc.GetList(ctx, model.WsMessageQuery{ListParams: model.ListParams{OrderName: "nope"}})
	if !errors.Is(err, apperr.ErrQuery) {
		t.Fatalf("store error should surface as query error, got %v", err)
	}
	e, _ := apperr.As(err)
	if e.HTTPStatus != 500 {
		t.Errorf("query error status = %d", e.HTTPStatus)
	}
}

func TestWsMessageService_GetListPaging(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewWsMessageService(repo, nil, nil, nil, testMaxLength)

	_, err := svc.GetList(context.Background(), model.WsMessageQuery{ListParams: model.ListParams{NowPage: 3, PageSize: 500, OrderName: "created_at", OrderBy: "DESC"}})
	if err != nil {
		t.Fatal(err)
	}
	if repo.lastPage.Number != 3 || repo.lastPage.Size != query.MaxPageSize {
		t.Errorf("page = %+v", repo.lastPage)
	}
	if len(repo.lastOrder.Columns) != 2 || repo.lastOrder.Columns[0].Column.Name != "created_at" || !repo.lastOrder.Columns[0].Desc {
		t.Errorf("order = %+v", repo.lastOrder)
	}
}

func TestTimeRange(t *testing.T) {
	start, end := int64(1000), int64(2000)
	r := timeRange(model.ListParams{RangTimeType: "send_msg_time", RangTimeStart: &start, RangTimeEnd: &end}, "send_msg_time")
	if !r.UnixMilli || r.Start.UnixMilli() != 1000 || r.End.UnixMilli() != 2000 {
		t.Errorf("range = %+v", r)
	}
	r = timeRange(model.ListParams{RangTimeStart: &start})
	if r.Column != "" || r.Start != nil {
		t.Errorf("range without column should be empty: %+v", r)
	}
}
