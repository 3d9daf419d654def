package listings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

type fakeRepo struct {
	products map[uuid.UUID]*models.Product
	ads      map[uuid.UUID]*models.Ad
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[uuid.UUID]*models.Product{},
		ads:      map[uuid.UUID]*models.Ad{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateProduct(_ context.Context, p *models.Product) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return f.products[id], nil
}

func (f *fakeRepo) ListProducts(_ context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.OwnerUserID == params.OwnerUserID {
			out = append(out, *p)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) ListOpenProducts(_ context.Context, params listOpenParams) ([]models.Product, *pagination.Cursor, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) CreateAd(_ context.Context, ad *models.Ad) error {
	ad.ID = uuid.New()
	ad.CreatedAt = time.Now().UTC()
	f.ads[ad.ID] = ad
	return nil
}

func (f *fakeRepo) FindAd(_ context.Context, id uuid.UUID) (*models.Ad, error) {
	return f.ads[id], nil
}

func (f *fakeRepo) ListAds(_ context.Context, params listAdsParams) ([]models.Ad, *pagination.Cursor, error) {
	var out []models.Ad
	for _, ad := range f.ads {
		if ad.OwnerUserID == params.OwnerUserID {
			out = append(out, *ad)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) ListOpenAds(_ context.Context, params listOpenParams) ([]models.Ad, *pagination.Cursor, error) {
	var out []models.Ad
	for _, ad := range f.ads {
		if ad.IsActive {
			out = append(out, *ad)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) DeactivateAd(_ context.Context, id, ownerUserID uuid.UUID, _ time.Time) (bool, error) {
	ad := f.ads[id]
	if ad == nil || ad.OwnerUserID != ownerUserID || !ad.IsActive {
		return false, nil
	}
	ad.IsActive = false
	return true, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testAddress() types.Address {
	return types.Address{
		Name:       "Asha Rao",
		Phone:      "9876543210",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		SKU:      "  ",
		Name:     "Widget",
		Category: enums.CategoryElectronics,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank sku, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		SKU:      "SKU-1",
		Name:     "Widget",
		Category: "bogus",
	})
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad category, got %v", err)
	}
}

func TestCreateAdSnapshotsProductCategory(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	owner := uuid.New()

	product, err := svc.CreateProduct(context.Background(), owner, CreateProductInput{
		SKU:      "SKU-1",
		Name:     "Phone",
		Category: enums.CategoryElectronics,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	ad, err := svc.CreateAd(context.Background(), owner, CreateAdInput{
		ProductID:       product.ID,
		Address:         testAddress(),
		PricePerProduct: decimal.NewFromInt(999),
		Quantity:        10,
	})
	if err != nil {
		t.Fatalf("create ad: %v", err)
	}
	if ad.Category != enums.CategoryElectronics {
		t.Fatalf("ad should snapshot product category, got %s", ad.Category)
	}
	if ad.Address.Country != "IN" {
		t.Fatalf("address should be normalized with default country, got %q", ad.Address.Country)
	}
	if !ad.IsActive {
		t.Fatal("new ad should be active")
	}
}

func TestCreateAdRejectsForeignProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		SKU:      "SKU-1",
		Name:     "Phone",
		Category: enums.CategoryElectronics,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.CreateAd(context.Background(), uuid.New(), CreateAdInput{
		ProductID:       product.ID,
		Address:         testAddress(),
		PricePerProduct: decimal.NewFromInt(100),
		Quantity:        1,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign product, got %v", err)
	}
}

func TestCreateAdRejectsNonPositiveTerms(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	owner := uuid.New()

	product, err := svc.CreateProduct(context.Background(), owner, CreateProductInput{
		SKU:      "SKU-1",
		Name:     "Phone",
		Category: enums.CategoryElectronics,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.CreateAd(context.Background(), owner, CreateAdInput{
		ProductID:       product.ID,
		Address:         testAddress(),
		PricePerProduct: decimal.Zero,
		Quantity:        1,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}

	_, err = svc.CreateAd(context.Background(), owner, CreateAdInput{
		ProductID:       product.ID,
		Address:         testAddress(),
		PricePerProduct: decimal.NewFromInt(10),
		Quantity:        0,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestDeactivateAdIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	owner := uuid.New()

	product, err := svc.CreateProduct(context.Background(), owner, CreateProductInput{
		SKU:      "SKU-1",
		Name:     "Phone",
		Category: enums.CategoryElectronics,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	ad, err := svc.CreateAd(context.Background(), owner, CreateAdInput{
		ProductID:       product.ID,
		Address:         testAddress(),
		PricePerProduct: decimal.NewFromInt(50),
		Quantity:        2,
	})
	if err != nil {
		t.Fatalf("create ad: %v", err)
	}

	if err := svc.DeactivateAd(context.Background(), ad.ID, owner); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	// Second call is a no-op success.
	if err := svc.DeactivateAd(context.Background(), ad.ID, owner); err != nil {
		t.Fatalf("repeat deactivate should succeed: %v", err)
	}

	// A stranger gets NotFound, not a hint the ad exists.
	err = svc.DeactivateAd(context.Background(), ad.ID, uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign ad, got %v", err)
	}
}

func TestGetAdNotFound(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.GetAd(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
