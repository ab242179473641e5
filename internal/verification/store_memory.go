package verification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Values are stored by copy so a snapshot taken before a transaction can be
// restored if the transaction fails.
type MemoryStore struct {
	mu        sync.Mutex
	partners  map[uuid.UUID]models.PartnerProfile
	documents map[uuid.UUID]models.Document
	history   []models.VerificationHistoryEntry
	seq       int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partners:  make(map[uuid.UUID]models.PartnerProfile),
		documents: make(map[uuid.UUID]models.Document),
	}
}

// stamp produces strictly increasing timestamps so ledger ordering is
// deterministic even when entries land within the same wall-clock tick.
func (s *MemoryStore) stamp() time.Time {
	s.seq++
	return time.Now().Add(time.Duration(s.seq) * time.Microsecond)
}

// Unlocked implementations. The exported methods and the transaction view
// both route here; only the exported methods take the mutex.

func (s *MemoryStore) partnerByID(id uuid.UUID) (models.PartnerProfile, error) {
	p, ok := s.partners[id]
	if !ok {
		return p, &NotFoundError{Resource: "partner", ID: id.String()}
	}
	return p, nil
}

func (s *MemoryStore) partnerByUserID(userID uuid.UUID) (models.PartnerProfile, error) {
	for _, p := range s.partners {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.PartnerProfile{}, &NotFoundError{Resource: "partner", ID: userID.String()}
}

func (s *MemoryStore) createPartner(p *models.PartnerProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.stamp()
	p.UpdatedAt = p.CreatedAt
	s.partners[p.ID] = *p
	return nil
}

func (s *MemoryStore) updatePartner(p *models.PartnerProfile) error {
	if _, ok := s.partners[p.ID]; !ok {
		return &NotFoundError{Resource: "partner", ID: p.ID.String()}
	}
	p.UpdatedAt = s.stamp()
	s.partners[p.ID] = *p
	return nil
}

func (s *MemoryStore) partnersByStatus(status models.OnboardingStatus, offset, limit int) ([]models.PartnerProfile, int64, error) {
	var matched []models.PartnerProfile
	for _, p := range s.partners {
		if p.OnboardingStatus == status {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) sectionCounts(partnerID uuid.UUID) (SectionCounts, error) {
	p, ok := s.partners[partnerID]
	if !ok {
		return SectionCounts{}, &NotFoundError{Resource: "partner", ID: partnerID.String()}
	}
	return SectionCounts{
		Services:  int64(len(p.Services)),
		Locations: int64(len(p.Locations)),
		Portfolio: int64(len(p.Portfolio)),
	}, nil
}

func (s *MemoryStore) documentByID(partnerID, docID uuid.UUID) (models.Document, error) {
	d, ok := s.documents[docID]
	if !ok || d.PartnerID != partnerID {
		return models.Document{}, &NotFoundError{Resource: "document", ID: docID.String()}
	}
	return d, nil
}

func (s *MemoryStore) documentsByPartner(partnerID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	for _, d := range s.documents {
		if d.PartnerID == partnerID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *MemoryStore) createDocument(d *models.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = s.stamp()
	d.UpdatedAt = d.CreatedAt
	s.documents[d.ID] = *d
	return nil
}

func (s *MemoryStore) updateDocument(d *models.Document) error {
	if _, ok := s.documents[d.ID]; !ok {
		return &NotFoundError{Resource: "document", ID: d.ID.String()}
	}
	d.UpdatedAt = s.stamp()
	s.documents[d.ID] = *d
	return nil
}

func (s *MemoryStore) appendHistory(e *models.VerificationHistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = s.stamp()
	s.history = append(s.history, *e)
	return nil
}

func (s *MemoryStore) historyByPartner(partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error) {
	var entries []models.VerificationHistoryEntry
	for _, e := range s.history {
		if e.PartnerID == partnerID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Exported Store methods.

func (s *MemoryStore) PartnerByID(ctx context.Context, id uuid.UUID) (models.PartnerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partnerByID(id)
}

func (s *MemoryStore) PartnerByUserID(ctx context.Context, userID uuid.UUID) (models.PartnerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partnerByUserID(userID)
}

func (s *MemoryStore) CreatePartner(ctx context.Context, p *models.PartnerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPartner(p)
}

func (s *MemoryStore) UpdatePartner(ctx context.Context, p *models.PartnerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePartner(p)
}

func (s *MemoryStore) PartnersByStatus(ctx context.Context, status models.OnboardingStatus, offset, limit int) ([]models.PartnerProfile, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partnersByStatus(status, offset, limit)
}

func (s *MemoryStore) SectionCounts(ctx context.Context, partnerID uuid.UUID) (SectionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionCounts(partnerID)
}

func (s *MemoryStore) DocumentByID(ctx context.Context, partnerID, docID uuid.UUID) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentByID(partnerID, docID)
}

func (s *MemoryStore) DocumentsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentsByPartner(partnerID)
}

func (s *MemoryStore) CreateDocument(ctx context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createDocument(d)
}

func (s *MemoryStore) UpdateDocument(ctx context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateDocument(d)
}

func (s *MemoryStore) AppendHistory(ctx context.Context, e *models.VerificationHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendHistory(e)
}

func (s *MemoryStore) HistoryByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyByPartner(partnerID)
}

// Transaction serializes all writers and restores the pre-transaction
// snapshot when fn fails, mirroring the all-or-nothing coupling the
// database store gets from a real transaction.
func (s *MemoryStore) Transaction(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partnersSnap := make(map[uuid.UUID]models.PartnerProfile, len(s.partners))
	for k, v := range s.partners {
		partnersSnap[k] = v
	}
	documentsSnap := make(map[uuid.UUID]models.Document, len(s.documents))
	for k, v := range s.documents {
		documentsSnap[k] = v
	}
	historySnap := make([]models.VerificationHistoryEntry, len(s.history))
	copy(historySnap, s.history)

	if err := fn(memoryView{s}); err != nil {
		s.partners = partnersSnap
		s.documents = documentsSnap
		s.history = historySnap
		return err
	}
	return nil
}

// memoryView is the store handed to a transaction body. The transaction
// already holds the mutex, so it routes straight to the unlocked core.
type memoryView struct {
	s *MemoryStore
}

func (v memoryView) PartnerByID(ctx context.Context, id uuid.UUID) (models.PartnerProfile, error) {
	return v.s.partnerByID(id)
}

func (v memoryView) PartnerByUserID(ctx context.Context, userID uuid.UUID) (models.PartnerProfile, error) {
	return v.s.partnerByUserID(userID)
}

func (v memoryView) CreatePartner(ctx context.Context, p *models.PartnerProfile) error {
	return v.s.createPartner(p)
}

func (v memoryView) UpdatePartner(ctx context.Context, p *models.PartnerProfile) error {
	return v.s.updatePartner(p)
}

func (v memoryView) PartnersByStatus(ctx context.Context, status models.OnboardingStatus, offset, limit int) ([]models.PartnerProfile, int64, error) {
	return v.s.partnersByStatus(status, offset, limit)
}

func (v memoryView) SectionCounts(ctx context.Context, partnerID uuid.UUID) (SectionCounts, error) {
	return v.s.sectionCounts(partnerID)
}

func (v memoryView) DocumentByID(ctx context.Context, partnerID, docID uuid.UUID) (models.Document, error) {
	return v.s.documentByID(partnerID, docID)
}

func (v memoryView) DocumentsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Document, error) {
	return v.s.documentsByPartner(partnerID)
}

func (v memoryView) CreateDocument(ctx context.Context, d *models.Document) error {
	return v.s.createDocument(d)
}

func (v memoryView) UpdateDocument(ctx context.Context, d *models.Document) error {
	return v.s.updateDocument(d)
}

func (v memoryView) AppendHistory(ctx context.Context, e *models.VerificationHistoryEntry) error {
	return v.s.appendHistory(e)
}

func (v memoryView) HistoryByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error) {
	return v.s.historyByPartner(partnerID)
}

// Nested transactions reuse the already-held lock
func (v memoryView) Transaction(ctx context.Context, fn func(Store) error) error {
	return fn(v)
}
