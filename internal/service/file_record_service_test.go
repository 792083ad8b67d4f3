package service

import (
	"context"
	"errors"
	"liveroom-go/internal/apperr"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"
	"testing"
	"time"

	"gorm.io/gorm/clause"
)

type fakeFileRepo struct {
	rows      map[uint]model.FileRecord
	nextID    uint
	listCalls int
	mutations int
	lastOrder clause.OrderBy
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{rows: make(map[uint]model.FileRecord), nextID: 1}
}

func (r *fakeFileRepo) Count(_ context.Context, ids []uint) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeFileRepo) FindOne(_ context.Context, id uint) (*model.FileRecord, error) {
	rec, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeFileRepo) FindAndCountAll(_ context.Context, _ query.Predicate, order clause.OrderBy, _ query.Page) ([]model.FileRecord, int64, error) {
	r.listCalls++
	r.lastOrder = order
	var out []model.FileRecord
	for _, rec := range r.rows {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeFileRepo) Create(_ context.Context, rec *model.FileRecord) error {
	r.mutations++
	rec.ID = r.nextID
	r.nextID++
	r.rows[rec.ID] = *rec
	return nil
}

func (r *fakeFileRepo) Update(_ context.Context, id uint, columns map[string]any) error {
	r.mutations++
	rec := r.rows[id]
	if v, ok := columns["object_key"]; ok {
		rec.ObjectKey = v.(string)
	}
	r.rows[id] = rec
	return nil
}

func (r *fakeFileRepo) Destroy(_ context.Context, id uint) error {
	r.mutations++
	delete(r.rows, id)
	return nil
}

func (r *fakeFileRepo) FindByObjectKey(_ context.Context, key string) (*model.FileRecord, error) {
	for _, rec := range r.rows {
		if rec.ObjectKey == key {
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *fakeFileRepo) FindByPrefix(_ context.Context, prefix string) ([]model.FileRecord, int64, error) {
	var out []model.FileRecord
	for _, rec := range r.rows {
		if rec.Prefix == prefix {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFileRepo) DestroyByPrefix(_ context.Context, prefix string) (int64, error) {
	r.mutations++
	var n int64
	for id, rec := range r.rows {
		if rec.Prefix == prefix {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeSigner struct {
	expiry time.Duration
}

func (s *fakeSigner) PresignedGetURL(_ context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	s.expiry = expiry
	return "http://minio.local/" + bucket + "/" + objectKey + "?X-Amz-Signature=abc", nil
}

func TestFileRecordService_CreateRequiresBucketAndKey(t *testing.T) {
	repo := newFakeFileRepo()
	svc := NewFileRecordService(repo, nil, nil, nil, time.Hour)
	ctx := context.Background()

	err := svc.Create(ctx, &model.FileRecord{ObjectKey: "a.png"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing bucket: %v", err)
	}
	if e, _ := apperr.As(err); e.Message != "bucket不能为空！" {
		t.Errorf("message = %q", e.Message)
	}
	if err := svc.Create(ctx, &model.FileRecord{Bucket: "b"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing object_key: %v", err)
	}
	if repo.mutations != 0 {
		t.Fatalf("rejected creates wrote %d times", repo.mutations)
	}

	rec := &model.FileRecord{Bucket: "b", ObjectKey: "img/a.png", Prefix: "img/", Fsize: "1024"}
	if err := svc.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.FindByObjectKey(ctx, "img/a.png")
	if err != nil || got == nil || got.ID != rec.ID {
		t.Fatalf("FindByObjectKey = %+v, %v", got, err)
	}
}

func TestFileRecordService_UpdateAndDelete(t *testing.T) {
	repo := newFakeFileRepo()
	svc := NewFileRecordService(repo, nil, nil, nil, time.Hour)
	ctx := context.Background()

	empty := ""
	if err := svc.Update(ctx, 1, model.FileRecordPatch{ObjectKey: &empty}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	rec := &model.FileRecord{Bucket: "b", ObjectKey: "k"}
	_ = svc.Create(ctx, rec)
	if err := svc.Update(ctx, rec.ID, model.FileRecordPatch{ObjectKey: &empty}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank object_key: %v", err)
	}
	key := "k2"
	if err := svc.Update(ctx, rec.ID, model.FileRecordPatch{ObjectKey: &key}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	before := repo.mutations
	if err := svc.Delete(ctx, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
	if repo.mutations != before {
		t.Fatal("delete of missing id must not mutate")
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestFileRecordService_Prefix(t *testing.T) {
	repo := newFakeFileRepo()
	store := cache.NewMemoryStore(100, time.Minute)
	lc := cache.NewListCache[model.PageResult[model.FileRecord]](store, cache.Options{TTL: 3 * time.Second, Keyspace: "test"})
	svc := NewFileRecordService(repo, lc, cache.NewStoreInvalidator(store, "test"), nil, time.Hour)
	ctx := context.Background()

	for _, k := range []string{"img/1.png", "img/2.png"} {
		_ = svc.Create(ctx, &model.FileRecord{UserID: 3, Bucket: "b", Prefix: "img/", ObjectKey: k})
	}
	_ = svc.Create(ctx, &model.FileRecord{UserID: 4, Bucket: "b", Prefix: "doc/", ObjectKey: "doc/1.pdf"})

	rows, total, err := svc.ListByPrefix(ctx, "img/")
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("ListByPrefix = %d, %d, %v", len(rows), total, err)
	}
	rows, total, _ = svc.ListByPrefix(ctx, "none/")
	if rows == nil || total != 0 {
		t.Fatalf("empty prefix list = %v, %d", rows, total)
	}

	if _, err := svc.BatchDeleteByPrefix(ctx, " "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank prefix: %v", err)
	}

	q := model.FileRecordQuery{UserID: uintPtr(3)}
	_, _ = svc.GetList(ctx, q)
	n, err := svc.BatchDeleteByPrefix(ctx, "img/")
	if err != nil || n != 2 {
		t.Fatalf("BatchDeleteByPrefix = %d, %v", n, err)
	}
	res, _ := svc.GetList(ctx, q)
	if repo.listCalls != 2 {
		t.Fatalf("batch delete should invalidate the owner's lists, store queried %d times", repo.listCalls)
	}
	if res.TotalItems != 1 {
		t.Errorf("remaining = %+v", res)
	}
}

func TestFileRecordService_PresignURL(t *testing.T) {
	repo := newFakeFileRepo()
	ctx := context.Background()

	noStorage := NewFileRecordService(repo, nil, nil, nil, time.Hour)
	if _, err := noStorage.PresignURL(ctx, 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("presign without storage: %v", err)
	}

	signer := &fakeSigner{}
	svc := NewFileRecordService(repo, nil, nil, signer, 15*time.Minute)
	if _, err := svc.PresignURL(ctx, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("presign missing record: %v", err)
	}

	rec := &model.FileRecord{Bucket: "live-room", ObjectKey: "img/a.png"}
	_ = svc.Create(ctx, rec)
	url, err := svc.PresignURL(ctx, rec.ID)
	if err != nil {
		t.Fatalf("PresignURL: %v", err)
	}
	if url != "http://minio.local/live-room/img/a.png?X-Amz-Signature=abc" {
		t.Errorf("url = %q", url)
	}
	if signer.expiry != 15*time.Minute {
		t.Errorf("expiry = %v", signer.expiry)
	}
}

func TestFileRecordService_GetListNumericOrder(t *testing.T) {
	repo := newFakeFileRepo()
	svc := NewFileRecordService(repo, nil, nil, nil, time.Hour)

	_, err := svc.GetList(context.Background(), model.FileRecordQuery{ListParams: model.ListParams{OrderName: "fsize", OrderBy: "desc"}})
	if err != nil {
		t.Fatal(err)
	}
	expr, ok := repo.lastOrder.Expression.(clause.Expr)
	if !ok || expr.SQL != "CAST(? AS SIGNED) DESC, ? DESC" {
		t.Fatalf("fsize order = %+v", repo.lastOrder)
	}
}
