package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
)

// In-memory repositories backing the service tests. They mirror the
// Postgres implementations' contract: sentinel errors, compare-and-set
// status updates and conditional room occupancy.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[uuid.UUID]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[uuid.UUID]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _, _ int) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateCrestKey(_ context.Context, id uuid.UUID, crestKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CrestKey = crestKey
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakePhaseRepo struct {
	phases map[uuid.UUID]*models.Phase
	rounds *fakeRoundRepo
}

func newFakePhaseRepo(rounds *fakeRoundRepo) *fakePhaseRepo {
	return &fakePhaseRepo{phases: make(map[uuid.UUID]*models.Phase), rounds: rounds}
}

func (r *fakePhaseRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Phase) error {
	for _, existing := range r.phases {
		if existing.TournamentID == p.TournamentID && existing.Name == p.Name {
			return repositories.ErrPhaseNameConflict
		}
	}
	copied := *p
	r.phases[p.ID] = &copied
	return nil
}

func (r *fakePhaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Phase, error) {
	p, ok := r.phases[id]
	if !ok {
		return nil, repositories.ErrPhaseNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePhaseRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.Phase, error) {
	var out []models.Phase
	for _, p := range r.phases {
		if p.TournamentID == tournamentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePhaseRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, expected, next models.Status) error {
	p, ok := r.phases[id]
	if !ok || p.Status != expected {
		return repositories.ErrPhaseNotFound
	}
	p.Status = next
	return nil
}

func (r *fakePhaseRepo) HasSuccessor(_ context.Context, phaseID uuid.UUID) (bool, error) {
	for _, p := range r.phases {
		if p.PreviousPhaseID != nil && *p.PreviousPhaseID == phaseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePhaseRepo) HasChainHead(_ context.Context, tournamentID uuid.UUID) (bool, error) {
	for _, p := range r.phases {
		if p.TournamentID == tournamentID && p.PreviousPhaseID == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePhaseRepo) CountUnfinishedRounds(_ context.Context, phaseID uuid.UUID) (int, error) {
	count := 0
	for _, round := range r.rounds.rounds {
		if round.PhaseID == phaseID && !round.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func (r *fakePhaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.phases[id]; !ok {
		return repositories.ErrPhaseNotFound
	}
	delete(r.phases, id)
	return nil
}

type fakeRoundRepo struct {
	rounds map[uuid.UUID]*models.Round
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[uuid.UUID]*models.Round)}
}

func (r *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	copied := *round
	r.rounds[round.ID] = &copied
	return nil
}

func (r *fakeRoundRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Round, error) {
	round, ok := r.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	copied := *round
	return &copied, nil
}

func (r *fakeRoundRepo) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Round, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRoundRepo) ListByPhase(_ context.Context, phaseID uuid.UUID) ([]models.Round, error) {
	var out []models.Round
	for _, round := range r.rounds {
		if round.PhaseID == phaseID {
			out = append(out, *round)
		}
	}
	return out, nil
}

func (r *fakeRoundRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, expected, next models.Status) error {
	round, ok := r.rounds[id]
	if !ok || round.Status != expected {
		return repositories.ErrRoundNotFound
	}
	round.Status = next
	return nil
}

func (r *fakeRoundRepo) HasSuccessor(_ context.Context, roundID uuid.UUID) (bool, error) {
	for _, round := range r.rounds {
		if round.PreviousRoundID != nil && *round.PreviousRoundID == roundID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoundRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rounds[id]; !ok {
		return repositories.ErrRoundNotFound
	}
	delete(r.rounds, id)
	return nil
}

type fakeDebateRepo struct {
	debates          map[uuid.UUID]*models.Debate
	teamAssignments  map[uuid.UUID][]models.DebateTeamAssignment
	judgeAssignments map[uuid.UUID][]models.DebateJudgeAssignment
}

func newFakeDebateRepo() *fakeDebateRepo {
	return &fakeDebateRepo{
		debates:          make(map[uuid.UUID]*models.Debate),
		teamAssignments:  make(map[uuid.UUID][]models.DebateTeamAssignment),
		judgeAssignments: make(map[uuid.UUID][]models.DebateJudgeAssignment),
	}
}

func (r *fakeDebateRepo) Create(_ context.Context, _ repositories.SQLExecutor, d *models.Debate) error {
	copied := *d
	copied.TeamAssignments = nil
	copied.JudgeAssignments = nil
	r.debates[d.ID] = &copied
	return nil
}

func (r *fakeDebateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Debate, error) {
	d, ok := r.debates[id]
	if !ok {
		return nil, repositories.ErrDebateNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDebateRepo) ListByRound(_ context.Context, roundID uuid.UUID) ([]models.Debate, error) {
	var out []models.Debate
	for _, d := range r.debates {
		if d.RoundID == roundID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDebateRepo) CountByRound(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) (int, error) {
	count := 0
	for _, d := range r.debates {
		if d.RoundID == roundID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDebateRepo) UpdateRoom(_ context.Context, _ repositories.SQLExecutor, debateID, roomID uuid.UUID) error {
	d, ok := r.debates[debateID]
	if !ok {
		return repositories.ErrDebateNotFound
	}
	d.RoomID = roomID
	return nil
}

func (r *fakeDebateRepo) UpdateMarshal(_ context.Context, _ repositories.SQLExecutor, debateID uuid.UUID, marshalUserID *uuid.UUID) error {
	d, ok := r.debates[debateID]
	if !ok {
		return repositories.ErrDebateNotFound
	}
	d.MarshalUserID = marshalUserID
	return nil
}

func (r *fakeDebateRepo) CreateTeamAssignment(_ context.Context, _ repositories.SQLExecutor, a *models.DebateTeamAssignment) error {
	r.teamAssignments[a.DebateID] = append(r.teamAssignments[a.DebateID], *a)
	return nil
}

func (r *fakeDebateRepo) CreateJudgeAssignment(_ context.Context, _ repositories.SQLExecutor, a *models.DebateJudgeAssignment) error {
	r.judgeAssignments[a.DebateID] = append(r.judgeAssignments[a.DebateID], *a)
	return nil
}

func (r *fakeDebateRepo) ListTeamAssignments(_ context.Context, _ repositories.SQLExecutor, debateID uuid.UUID) ([]models.DebateTeamAssignment, error) {
	return append([]models.DebateTeamAssignment(nil), r.teamAssignments[debateID]...), nil
}

func (r *fakeDebateRepo) ListJudgeAssignments(_ context.Context, _ repositories.SQLExecutor, debateID uuid.UUID) ([]models.DebateJudgeAssignment, error) {
	return append([]models.DebateJudgeAssignment(nil), r.judgeAssignments[debateID]...), nil
}

func (r *fakeDebateRepo) ListTeamIDsByRound(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for debateID, assignments := range r.teamAssignments {
		if d, ok := r.debates[debateID]; ok && d.RoundID == roundID {
			for _, a := range assignments {
				out = append(out, a.TeamID)
			}
		}
	}
	return out, nil
}

func (r *fakeDebateRepo) ListJudgeUserIDsByRound(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for debateID, assignments := range r.judgeAssignments {
		if d, ok := r.debates[debateID]; ok && d.RoundID == roundID {
			for _, a := range assignments {
				out = append(out, a.JudgeUserID)
			}
		}
	}
	return out, nil
}

func (r *fakeDebateRepo) ListRoomIDsByRound(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, d := range r.debates {
		if d.RoundID == roundID {
			out = append(out, d.RoomID)
		}
	}
	return out, nil
}

func (r *fakeDebateRepo) UpdateTeamAssignmentTeam(_ context.Context, _ repositories.SQLExecutor, debateID, currentTeamID, newTeamID uuid.UUID) error {
	assignments := r.teamAssignments[debateID]
	for i := range assignments {
		if assignments[i].TeamID == currentTeamID {
			assignments[i].TeamID = newTeamID
			return nil
		}
	}
	return repositories.ErrDebateAssignmentNotFound
}

func (r *fakeDebateRepo) UpdateTeamAssignmentSide(_ context.Context, _ repositories.SQLExecutor, debateID, teamID uuid.UUID, side models.Side) error {
	assignments := r.teamAssignments[debateID]
	for i := range assignments {
		if assignments[i].TeamID == teamID {
			assignments[i].Side = side
			return nil
		}
	}
	return repositories.ErrDebateAssignmentNotFound
}

func (r *fakeDebateRepo) UpdateJudgeAssignment(_ context.Context, _ repositories.SQLExecutor, debateID, currentJudgeID, newJudgeID uuid.UUID) error {
	assignments := r.judgeAssignments[debateID]
	for i := range assignments {
		if assignments[i].JudgeUserID == currentJudgeID {
			assignments[i].JudgeUserID = newJudgeID
			return nil
		}
	}
	return repositories.ErrDebateAssignmentNotFound
}

type fakeTeamRepo struct {
	teams map[uuid.UUID]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[uuid.UUID]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.Team, error) {
	var out []models.Team
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, t *models.Team) error {
	if _, ok := r.teams[t.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.teams[t.ID] = t
	return nil
}

func (r *fakeTeamRepo) UpdateCrestKey(_ context.Context, id uuid.UUID, crestKey *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CrestKey = crestKey
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeAttendeeRepo struct {
	attendees map[uuid.UUID]*models.Attendee
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{attendees: make(map[uuid.UUID]*models.Attendee)}
}

func (r *fakeAttendeeRepo) Create(_ context.Context, a *models.Attendee) error {
	copied := *a
	r.attendees[a.ID] = &copied
	return nil
}

func (r *fakeAttendeeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Attendee, error) {
	a, ok := r.attendees[id]
	if !ok {
		return nil, repositories.ErrAttendeeNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAttendeeRepo) ListByTeam(_ context.Context, teamID uuid.UUID) ([]models.Attendee, error) {
	var out []models.Attendee
	for _, a := range r.attendees {
		if a.TeamID != nil && *a.TeamID == teamID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) Update(_ context.Context, a *models.Attendee) error {
	if _, ok := r.attendees[a.ID]; !ok {
		return repositories.ErrAttendeeNotFound
	}
	r.attendees[a.ID] = a
	return nil
}

func (r *fakeAttendeeRepo) AddPoints(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, individualDelta, penaltyDelta int) error {
	a, ok := r.attendees[id]
	if !ok {
		return repositories.ErrAttendeeNotFound
	}
	a.IndividualPoints += individualDelta
	a.PenaltyPoints += penaltyDelta
	return nil
}

func (r *fakeAttendeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.attendees[id]; !ok {
		return repositories.ErrAttendeeNotFound
	}
	delete(r.attendees, id)
	return nil
}

type fakeLocationRepo struct {
	locations map[uuid.UUID]*models.Location
	rooms     map[uuid.UUID]*models.Room
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{
		locations: make(map[uuid.UUID]*models.Location),
		rooms:     make(map[uuid.UUID]*models.Room),
	}
}

func (r *fakeLocationRepo) Create(_ context.Context, l *models.Location) error {
	copied := *l
	r.locations[l.ID] = &copied
	return nil
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, repositories.ErrLocationNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLocationRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.Location, error) {
	var out []models.Location
	for _, l := range r.locations {
		if l.TournamentID == tournamentID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.locations[id]; !ok {
		return repositories.ErrLocationNotFound
	}
	delete(r.locations, id)
	return nil
}

func (r *fakeLocationRepo) CreateRoom(_ context.Context, room *models.Room) error {
	copied := *room
	r.rooms[room.ID] = &copied
	return nil
}

func (r *fakeLocationRepo) GetRoomByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, repositories.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *fakeLocationRepo) ListRoomsByLocation(_ context.Context, locationID uuid.UUID) ([]models.Room, error) {
	var out []models.Room
	for _, room := range r.rooms {
		if room.LocationID == locationID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) OccupyRoom(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	room, ok := r.rooms[id]
	if !ok {
		return repositories.ErrRoomNotFound
	}
	if room.IsOccupied {
		return repositories.ErrRoomAlreadyOccupied
	}
	room.IsOccupied = true
	return nil
}

func (r *fakeLocationRepo) ReleaseRoom(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	room, ok := r.rooms[id]
	if !ok {
		return repositories.ErrRoomNotFound
	}
	room.IsOccupied = false
	return nil
}

func (r *fakeLocationRepo) DeleteRoom(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rooms[id]; !ok {
		return repositories.ErrRoomNotFound
	}
	delete(r.rooms, id)
	return nil
}

type fakeResultRepo struct {
	results map[uuid.UUID][]models.DebateResult
	// Preset aggregation returned by SumByPhase, keyed by phase id.
	phasePoints map[uuid.UUID][]repositories.PhasePoints
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{
		results:     make(map[uuid.UUID][]models.DebateResult),
		phasePoints: make(map[uuid.UUID][]repositories.PhasePoints),
	}
}

func (r *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, result *models.DebateResult) error {
	for _, existing := range r.results[result.DebateID] {
		if existing.AttendeeID == result.AttendeeID {
			return repositories.ErrResultDuplicate
		}
	}
	result.RecordedAt = time.Now()
	r.results[result.DebateID] = append(r.results[result.DebateID], *result)
	return nil
}

func (r *fakeResultRepo) ListByDebate(_ context.Context, debateID uuid.UUID) ([]models.DebateResult, error) {
	return append([]models.DebateResult(nil), r.results[debateID]...), nil
}

func (r *fakeResultRepo) SumByPhase(_ context.Context, phaseID uuid.UUID) ([]repositories.PhasePoints, error) {
	return append([]repositories.PhasePoints(nil), r.phasePoints[phaseID]...), nil
}

type fakeRoleRepo struct {
	roles map[string]*models.TournamentRole
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]*models.TournamentRole)}
}

func roleKey(userID, tournamentID uuid.UUID) string {
	return userID.String() + "/" + tournamentID.String()
}

func (r *fakeRoleRepo) Grant(_ context.Context, role *models.TournamentRole) error {
	copied := *role
	r.roles[roleKey(role.UserID, role.TournamentID)] = &copied
	return nil
}

func (r *fakeRoleRepo) GetByUserAndTournament(_ context.Context, userID, tournamentID uuid.UUID) (*models.TournamentRole, error) {
	role, ok := r.roles[roleKey(userID, tournamentID)]
	if !ok {
		return nil, repositories.ErrRolesNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role *models.TournamentRole) error {
	key := roleKey(role.UserID, role.TournamentID)
	if _, ok := r.roles[key]; !ok {
		return repositories.ErrRolesNotFound
	}
	copied := *role
	r.roles[key] = &copied
	return nil
}

func (r *fakeRoleRepo) Revoke(_ context.Context, userID, tournamentID uuid.UUID) error {
	key := roleKey(userID, tournamentID)
	if _, ok := r.roles[key]; !ok {
		return repositories.ErrRolesNotFound
	}
	delete(r.roles, key)
	return nil
}

type fakeAffiliationRepo struct {
	affiliations map[uuid.UUID]*models.Affiliation
}

func newFakeAffiliationRepo() *fakeAffiliationRepo {
	return &fakeAffiliationRepo{affiliations: make(map[uuid.UUID]*models.Affiliation)}
}

func (r *fakeAffiliationRepo) Create(_ context.Context, a *models.Affiliation) error {
	copied := *a
	r.affiliations[a.ID] = &copied
	return nil
}

func (r *fakeAffiliationRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.Affiliation, error) {
	var out []models.Affiliation
	for _, a := range r.affiliations {
		if a.TournamentID == tournamentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAffiliationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.affiliations[id]; !ok {
		return repositories.ErrAffiliationNotFound
	}
	delete(r.affiliations, id)
	return nil
}

// fixture wires the three heavyweight services over the in-memory
// repositories.
type fixture struct {
	tournamentRepo  *fakeTournamentRepo
	phaseRepo       *fakePhaseRepo
	roundRepo       *fakeRoundRepo
	debateRepo      *fakeDebateRepo
	teamRepo        *fakeTeamRepo
	attendeeRepo    *fakeAttendeeRepo
	locationRepo    *fakeLocationRepo
	resultRepo      *fakeResultRepo
	motionRepo      *fakeMotionRepo
	roleRepo        *fakeRoleRepo
	affiliationRepo *fakeAffiliationRepo

	hub *draws.Hub

	structure StructureService
	draw      DrawService
	scoring   ScoringService
}

func newFixture() *fixture {
	f := &fixture{
		tournamentRepo:  newFakeTournamentRepo(),
		roundRepo:       newFakeRoundRepo(),
		debateRepo:      newFakeDebateRepo(),
		teamRepo:        newFakeTeamRepo(),
		attendeeRepo:    newFakeAttendeeRepo(),
		locationRepo:    newFakeLocationRepo(),
		resultRepo:      newFakeResultRepo(),
		motionRepo:      newFakeMotionRepo(),
		roleRepo:        newFakeRoleRepo(),
		affiliationRepo: newFakeAffiliationRepo(),
	}
	f.phaseRepo = newFakePhaseRepo(f.roundRepo)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := draws.NewHub()
	f.hub = hub
	txRunner := fakeTxRunner{}

	f.structure = NewStructureService(
		txRunner, f.tournamentRepo, f.phaseRepo, f.roundRepo,
		f.debateRepo, f.motionRepo, f.locationRepo, hub, logger,
	)
	f.draw = NewDrawService(
		txRunner, f.phaseRepo, f.roundRepo, f.debateRepo,
		f.teamRepo, f.locationRepo, f.motionRepo, f.roleRepo, f.affiliationRepo, hub, logger,
	)
	f.scoring = NewScoringService(
		txRunner, f.phaseRepo, f.roundRepo, f.debateRepo,
		f.attendeeRepo, f.resultRepo, hub, logger,
	)
	return f
}

type fakeMotionRepo struct {
	motions map[uuid.UUID]*models.Motion
}

func newFakeMotionRepo() *fakeMotionRepo {
	return &fakeMotionRepo{motions: make(map[uuid.UUID]*models.Motion)}
}

func (r *fakeMotionRepo) Create(_ context.Context, m *models.Motion) error {
	copied := *m
	r.motions[m.ID] = &copied
	return nil
}

func (r *fakeMotionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Motion, error) {
	m, ok := r.motions[id]
	if !ok {
		return nil, repositories.ErrMotionNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMotionRepo) List(_ context.Context) ([]models.Motion, error) {
	var out []models.Motion
	for _, m := range r.motions {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMotionRepo) Update(_ context.Context, m *models.Motion) error {
	if _, ok := r.motions[m.ID]; !ok {
		return repositories.ErrMotionNotFound
	}
	r.motions[m.ID] = m
	return nil
}

func (r *fakeMotionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.motions[id]; !ok {
		return repositories.ErrMotionNotFound
	}
	delete(r.motions, id)
	return nil
}

// Seed helpers.

func (f *fixture) seedTournament() uuid.UUID {
	id := uuid.New()
	f.tournamentRepo.tournaments[id] = &models.Tournament{ID: id, FullName: "Test Cup"}
	return id
}

func (f *fixture) seedPhase(tournamentID uuid.UUID, status models.Status, isFinals bool, groupSize *int) uuid.UUID {
	id := uuid.New()
	f.phaseRepo.phases[id] = &models.Phase{
		ID:           id,
		TournamentID: tournamentID,
		Name:         "Phase " + id.String()[:8],
		IsFinals:     isFinals,
		GroupSize:    groupSize,
		Status:       status,
	}
	return id
}

func (f *fixture) seedRound(phaseID uuid.UUID, status models.Status) uuid.UUID {
	id := uuid.New()
	f.roundRepo.rounds[id] = &models.Round{
		ID:      id,
		PhaseID: phaseID,
		Name:    "Round " + id.String()[:8],
		Status:  status,
	}
	return id
}

func (f *fixture) seedTeam(tournamentID uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	f.teamRepo.teams[id] = &models.Team{ID: id, TournamentID: tournamentID, FullName: name}
	return id
}

func (f *fixture) seedRoom(occupied bool) uuid.UUID {
	id := uuid.New()
	f.locationRepo.rooms[id] = &models.Room{ID: id, LocationID: uuid.New(), Name: "Room", IsOccupied: occupied}
	return id
}

func (f *fixture) seedUserWithRoles(tournamentID uuid.UUID, roles ...models.Role) uuid.UUID {
	id := uuid.New()
	f.roleRepo.roles[roleKey(id, tournamentID)] = &models.TournamentRole{
		ID:           uuid.New(),
		UserID:       id,
		TournamentID: tournamentID,
		Roles:        roles,
	}
	return id
}

func (f *fixture) seedAttendee(teamID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.attendeeRepo.attendees[id] = &models.Attendee{ID: id, Name: "Speaker", TeamID: teamID}
	return id
}
