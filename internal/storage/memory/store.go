// Package memory provides the in-process storage backend.
//
// It models the original deployment: one logical writer per clinic location,
// every collection held in memory, every mutating operation a synchronous
// read-modify-write. A single mutex serializes writers; the transaction
// manager holds it for the whole span of an operation so that payment posts,
// aggregate updates and settlement snapshots are atomic as observed by any
// reader.
package memory

import (
	"sync"

	"clinicash/internal/core/id"
	"clinicash/internal/domain/adjustment"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/auth"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/reception"
	"clinicash/internal/domain/settlement"
)

// Store holds every collection of the reconciliation engine.
type Store struct {
	mu sync.Mutex

	registers map[ledger.OwnerKey]*ledger.CashRegister
	txLog     []ledger.Transaction

	appointments map[id.ID]*appointment.Appointment

	dailySettlements   map[id.ID]*settlement.Daily
	monthlySettlements map[id.ID]*settlement.Monthly

	adjustments map[id.ID]*adjustment.Adjustment
	tasks       map[id.ID]*adjustment.Task

	dailyCloses   map[string]*reception.DailyClose   // keyed by yyyy-mm-dd
	monthlyCloses map[string]*reception.MonthlyClose // keyed by yyyy-mm

	professionals map[id.ID]*professional.Professional
	treatments    map[id.ID]*treatment.Treatment

	users map[id.ID]*auth.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		registers:          make(map[ledger.OwnerKey]*ledger.CashRegister),
		txLog:              make([]ledger.Transaction, 0),
		appointments:       make(map[id.ID]*appointment.Appointment),
		dailySettlements:   make(map[id.ID]*settlement.Daily),
		monthlySettlements: make(map[id.ID]*settlement.Monthly),
		adjustments:        make(map[id.ID]*adjustment.Adjustment),
		tasks:              make(map[id.ID]*adjustment.Task),
		dailyCloses:        make(map[string]*reception.DailyClose),
		monthlyCloses:      make(map[string]*reception.MonthlyClose),
		professionals:      make(map[id.ID]*professional.Professional),
		treatments:         make(map[id.ID]*treatment.Treatment),
		users:              make(map[id.ID]*auth.User),
	}
}

// Repositories bound to this store.

func (s *Store) Ledger() *LedgerRepo             { return &LedgerRepo{store: s} }
func (s *Store) Appointments() *AppointmentRepo  { return &AppointmentRepo{store: s} }
func (s *Store) Settlements() *SettlementRepo    { return &SettlementRepo{store: s} }
func (s *Store) Adjustments() *AdjustmentRepo    { return &AdjustmentRepo{store: s} }
func (s *Store) Reception() *ReceptionRepo       { return &ReceptionRepo{store: s} }
func (s *Store) Professionals() *ProfessionalRepo { return &ProfessionalRepo{store: s} }
func (s *Store) Treatments() *TreatmentRepo      { return &TreatmentRepo{store: s} }
func (s *Store) Users() *UserRepo                { return &UserRepo{store: s} }
