package billing_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facturasur/dte-engine/internal/domain"
	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba en memoria. El fakeTxRunner emula la semántica transaccional
// real: serializa cada RunBilling (como lo hace el FOR UPDATE por fila) y ante
// error restaura el estado previo (rollback), lo que permite verificar que un
// folio no se consume si la emisión falla.
// ──────────────────────────────────────────────────────────────────────────────

type fakeCAFRepo struct {
	mu   sync.Mutex
	cafs map[string]*entity.CAF
}

var _ repository.CAFRepository = (*fakeCAFRepo)(nil)

func newFakeCAFRepo() *fakeCAFRepo {
	return &fakeCAFRepo{cafs: make(map[string]*entity.CAF)}
}

func cloneCAF(c *entity.CAF) *entity.CAF {
	cp := *c
	return &cp
}

func (r *fakeCAFRepo) snapshot() map[string]*entity.CAF {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*entity.CAF, len(r.cafs))
	for id, c := range r.cafs {
		snap[id] = cloneCAF(c)
	}
	return snap
}

func (r *fakeCAFRepo) restore(snap map[string]*entity.CAF) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cafs = snap
}

func (r *fakeCAFRepo) Create(_ context.Context, caf *entity.CAF) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cafs {
		if c.CompanyID == caf.CompanyID && c.DocumentType == caf.DocumentType && c.FolioStart == caf.FolioStart {
			return domain.ErrDuplicateCAF
		}
	}
	r.cafs[caf.ID] = cloneCAF(caf)
	return nil
}

func (r *fakeCAFRepo) GetByID(_ context.Context, id string) (*entity.CAF, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cafs[id]
	if !ok {
		return nil, nil
	}
	return cloneCAF(c), nil
}

func (r *fakeCAFRepo) ExistsRange(_ context.Context, companyID string, docType dte.DocumentType, folioStart int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cafs {
		if c.CompanyID == companyID && c.DocumentType == docType && c.FolioStart == folioStart {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCAFRepo) SelectEligibleForUpdate(_ context.Context, companyID string, docType dte.DocumentType) (*entity.CAF, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.CAF
	for _, c := range r.cafs {
		if c.CompanyID != companyID || c.DocumentType != docType || !c.IsActive || c.Exhausted {
			continue
		}
		if best == nil || c.CurrentFolio < best.CurrentFolio {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}
	return cloneCAF(best), nil
}

func (r *fakeCAFRepo) UpdateFolio(_ context.Context, caf *entity.CAF) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cafs[caf.ID] = cloneCAF(caf)
	return nil
}

func (r *fakeCAFRepo) Deactivate(_ context.Context, companyID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cafs[id]
	if !ok || c.CompanyID != companyID {
		return false, nil
	}
	c.IsActive = false
	return true, nil
}

func (r *fakeCAFRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CAF, error) {
	return r.filter(func(c *entity.CAF) bool { return c.CompanyID == companyID }), nil
}

func (r *fakeCAFRepo) ListActive(_ context.Context, companyID string) ([]*entity.CAF, error) {
	return r.filter(func(c *entity.CAF) bool { return c.CompanyID == companyID && c.IsActive }), nil
}

func (r *fakeCAFRepo) ListByType(_ context.Context, companyID string, docType dte.DocumentType) ([]*entity.CAF, error) {
	return r.filter(func(c *entity.CAF) bool { return c.CompanyID == companyID && c.DocumentType == docType }), nil
}

func (r *fakeCAFRepo) AvailableByType(_ context.Context, companyID string) (map[dte.DocumentType]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	counts := make(map[dte.DocumentType]int64)
	for _, c := range r.cafs {
		if c.CompanyID != companyID || !c.IsActive || c.Exhausted || c.ExpiredAt(now) {
			continue
		}
		counts[c.DocumentType] += c.Available()
	}
	return counts, nil
}

func (r *fakeCAFRepo) filter(keep func(*entity.CAF) bool) []*entity.CAF {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CAF
	for _, c := range r.cafs {
		if keep(c) {
			out = append(out, cloneCAF(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FolioStart < out[j].FolioStart })
	return out
}

// ──────────────────────────────────────────────────────────────────────────────

type fakeDTERepo struct {
	mu      sync.Mutex
	docs    map[string]*entity.DTE
	details map[string][]*entity.DTEDetail

	// failCreate fuerza el error de Create para probar el rollback.
	failCreate error
}

var _ repository.DTERepository = (*fakeDTERepo)(nil)

func newFakeDTERepo() *fakeDTERepo {
	return &fakeDTERepo{
		docs:    make(map[string]*entity.DTE),
		details: make(map[string][]*entity.DTEDetail),
	}
}

type dteSnapshot struct {
	docs    map[string]*entity.DTE
	details map[string][]*entity.DTEDetail
}

func (r *fakeDTERepo) snapshot() dteSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := dteSnapshot{
		docs:    make(map[string]*entity.DTE, len(r.docs)),
		details: make(map[string][]*entity.DTEDetail, len(r.details)),
	}
	for id, d := range r.docs {
		cp := *d
		snap.docs[id] = &cp
	}
	for id, lines := range r.details {
		snap.details[id] = append([]*entity.DTEDetail(nil), lines...)
	}
	return snap
}

func (r *fakeDTERepo) restore(snap dteSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = snap.docs
	r.details = snap.details
}

func (r *fakeDTERepo) Create(_ context.Context, doc *entity.DTE) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDTERepo) CreateDetail(_ context.Context, detail *entity.DTEDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *detail
	r.details[detail.DTEID] = append(r.details[detail.DTEID], &cp)
	return nil
}

func (r *fakeDTERepo) GetByID(_ context.Context, id string) (*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDTERepo) GetDetails(_ context.Context, dteID string) ([]*entity.DTEDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := append([]*entity.DTEDetail(nil), r.details[dteID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNumber < lines[j].LineNumber })
	return lines, nil
}

func (r *fakeDTERepo) List(_ context.Context, companyID string, f repository.DTEFilter) ([]*entity.DTE, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.DTE
	for _, d := range r.docs {
		if d.CompanyID != companyID {
			continue
		}
		if f.DocumentType != nil && d.DocumentType != *f.DocumentType {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		cp := *d
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if f.Offset < len(all) {
		all = all[f.Offset:]
	} else {
		all = nil
	}
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *fakeDTERepo) ListByDateRange(_ context.Context, companyID string, from, toExclusive time.Time, docType *dte.DocumentType) ([]*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DTE
	for _, d := range r.docs {
		if d.CompanyID != companyID {
			continue
		}
		if docType != nil && d.DocumentType != *docType {
			continue
		}
		if d.IssuedAt.Before(from) || !d.IssuedAt.Before(toExclusive) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folio < out[j].Folio })
	return out, nil
}

func (r *fakeDTERepo) UpdateStatus(_ context.Context, doc *entity.DTE) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

// fakeTxRunner serializa cada unidad de trabajo y revierte el estado completo
// ante error, como lo haría la transacción real.
type fakeTxRunner struct {
	mu      sync.Mutex
	cafRepo *fakeCAFRepo
	dteRepo *fakeDTERepo
}

func newFakeTxRunner(cafRepo *fakeCAFRepo, dteRepo *fakeDTERepo) *fakeTxRunner {
	return &fakeTxRunner{cafRepo: cafRepo, dteRepo: dteRepo}
}

func (r *fakeTxRunner) RunBilling(_ context.Context, fn func(repository.CAFRepository, repository.DTERepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cafSnap := r.cafRepo.snapshot()
	dteSnap := r.dteRepo.snapshot()
	if err := fn(r.cafRepo, r.dteRepo); err != nil {
		r.cafRepo.restore(cafSnap)
		r.dteRepo.restore(dteSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

// fakeParser devuelve datos fijos sin mirar el XML (el parser real se prueba
// en su propio paquete).
type fakeParser struct {
	data *dte.CAFData
	err  error
}

func (p *fakeParser) Parse(_ []byte) (*dte.CAFData, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.data, nil
}

func boletaCAFData(start, end int64) *dte.CAFData {
	return &dte.CAFData{
		DocumentType:      dte.Boleta,
		FolioStart:        start,
		FolioEnd:          end,
		AuthorizationDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EmitterRUT:        "76543210-5",
		EmitterName:       "COMERCIAL DEMO LTDA",
		RawXML:            "<AUTORIZACION/>",
	}
}

func seedCAF(repo *fakeCAFRepo, id, companyID string, docType dte.DocumentType, start, end int64) *entity.CAF {
	caf := &entity.CAF{
		ID:                id,
		CompanyID:         companyID,
		DocumentType:      docType,
		FolioStart:        start,
		FolioEnd:          end,
		CurrentFolio:      start,
		AuthorizationDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		IsActive:          true,
		CreatedBy:         "user-1",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	repo.cafs[id] = caf
	return caf
}
