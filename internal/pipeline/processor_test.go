package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskrouter/internal/config"
	"taskrouter/internal/crypto"
	"taskrouter/internal/intent"
	"taskrouter/internal/models"
	"taskrouter/internal/policy"
	"taskrouter/internal/routing"
	"taskrouter/internal/session"
	"taskrouter/internal/store"
)

type fakeTaskRepo struct {
	tasks     []models.Task
	createErr error
}

func (f *fakeTaskRepo) CreateTask(_ context.Context, task *models.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	task.CreatedAt = time.Now().UTC()
	f.tasks = append(f.tasks, *task)
	return nil
}

func (f *fakeTaskRepo) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			copied := f.tasks[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTaskRepo) ListTasks(context.Context, models.TaskFilters) ([]models.Task, error) {
	return f.tasks, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	byTriple map[[3]string]*models.Session
}

func (f *fakeSessionRepo) Upsert(_ context.Context, s *models.Session) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byTriple == nil {
		f.byTriple = make(map[[3]string]*models.Session)
	}
	key := [3]string{s.UserID, s.ThreadKind, s.ThreadKey}
	if stored, ok := f.byTriple[key]; ok {
		stored.LastActivityAt = stored.LastActivityAt.Add(time.Millisecond)
		*s = *stored
		return false, nil
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.LastActivityAt = now
	stored := *s
	f.byTriple[key] = &stored
	return true, nil
}

func (f *fakeSessionRepo) GetByTriple(_ context.Context, userID, threadKind, threadKey string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byTriple[[3]string{userID, threadKind, threadKey}]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeSessionRepo) UpdateTitle(_ context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.byTriple {
		if stored.ID == id {
			stored.Title = title
		}
	}
	return nil
}

type staticRoles struct {
	roles map[string]models.Role
}

func (s staticRoles) RoleOf(_ context.Context, userID string) models.Role {
	if role, ok := s.roles[userID]; ok {
		return role
	}
	return models.RoleGeneralist
}

type recordingPublisher struct {
	events []models.TaskCreatedEvent
	err    error
}

func (r *recordingPublisher) PublishTaskCreated(_ context.Context, event models.TaskCreatedEvent) error {
	r.events = append(r.events, event)
	return r.err
}

type harness struct {
	processor *Processor
	taskRepo  *fakeTaskRepo
	sessions  *fakeSessionRepo
	publisher *recordingPublisher
}

func newHarness(t *testing.T, roles map[string]models.Role) *harness {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.NewCipher(key)
	require.NoError(t, err)

	logger := zap.NewNop()
	taskRepo := &fakeTaskRepo{}
	sessionRepo := &fakeSessionRepo{}
	publisher := &recordingPublisher{}

	rules := intent.NewRuleBased(intent.NewVocabulary(nil))
	taskStore := store.NewTaskStore(taskRepo, policy.NewSelector(config.PolicyModeProduction, logger), cipher, logger)
	router := routing.NewRouter(routing.Thresholds{SchedulingFanoutLimit: 4, OutreachFanoutLimit: 5}, logger)
	resolver := session.NewResolver(sessionRepo, logger)

	processor := NewProcessor(rules, rules, router, taskStore, resolver, staticRoles{roles: roles}, publisher, logger)
	return &harness{processor: processor, taskRepo: taskRepo, sessions: sessionRepo, publisher: publisher}
}

func msg(sender, text string) models.InboundMessage {
	return models.InboundMessage{
		SenderID:   sender,
		RawText:    text,
		ChannelID:  "C1",
		ReceivedAt: time.Now().UTC(),
	}
}

func TestProcess_NonWorkMessageProducesNothing(t *testing.T) {
	h := newHarness(t, nil)

	task, err := h.processor.Process(context.Background(), msg("U_sender", "great weather today"))
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Empty(t, h.taskRepo.tasks)
	assert.Empty(t, h.publisher.events)
}

func TestProcess_VerbWithoutMentionsProducesNothing(t *testing.T) {
	h := newHarness(t, nil)

	task, err := h.processor.Process(context.Background(), msg("U_sender", "schedule a meeting tomorrow"))
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Empty(t, h.taskRepo.tasks)
}

func TestProcess_WorkRequestPersistsTask(t *testing.T) {
	h := newHarness(t, nil)

	task, err := h.processor.Process(context.Background(), msg("U_sender", "<@U1> can you schedule a meeting?"))
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "U_sender", task.AssignorID)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, "U1", *task.AssigneeID)
	assert.Equal(t, []string{"U1"}, []string(task.AddressedUserIDs))
	assert.Equal(t, models.SourceChat, task.Source)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.RoutePersonalQueue, task.RouteTo)
	assert.Equal(t, "can you schedule a meeting?", task.Title)

	require.Len(t, h.taskRepo.tasks, 1)
	assert.NotEmpty(t, h.taskRepo.tasks[0].RawTextEncrypted)
}

func TestProcess_RouteReflectsFanoutAndRole(t *testing.T) {
	h := newHarness(t, map[string]models.Role{"U_spec": models.RoleSpecialist})

	wide := "<@A> <@B> <@C> <@D> schedule the all-hands"
	task, err := h.processor.Process(context.Background(), msg("U_sender", wide))
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, models.RouteTeamQueueA, task.RouteTo)

	task, err = h.processor.Process(context.Background(), msg("U_spec", wide))
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, models.RouteTeamQueueB, task.RouteTo)
}

func TestProcess_CreatesSessionWithPrefixedTitle(t *testing.T) {
	h := newHarness(t, nil)

	task, err := h.processor.Process(context.Background(), msg("U_sender", "<@U1> review the proposal"))
	require.NoError(t, err)
	require.NotNil(t, task)

	sess, err := h.sessions.GetByTriple(context.Background(), "U_sender", "task", task.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Task: review the proposal", sess.Title)
}

func TestProcess_PublishesTaskCreatedEvent(t *testing.T) {
	h := newHarness(t, nil)

	task, err := h.processor.Process(context.Background(), msg("U_sender", "<@U1> email the client"))
	require.NoError(t, err)
	require.NotNil(t, task)

	require.Len(t, h.publisher.events, 1)
	event := h.publisher.events[0]
	assert.Equal(t, task.ID, event.TaskID)
	assert.Equal(t, task.RouteTo, event.RouteTo)
	require.NotNil(t, event.AssigneeID)
	assert.Equal(t, "U1", *event.AssigneeID)
}

func TestProcess_PublisherFailureDoesNotFailPipeline(t *testing.T) {
	h := newHarness(t, nil)
	h.publisher.err = errors.New("notifier down")

	task, err := h.processor.Process(context.Background(), msg("U_sender", "<@U1> email the client"))
	require.NoError(t, err)
	assert.NotNil(t, task)
}

func TestProcess_PersistenceErrorSurfaces(t *testing.T) {
	h := newHarness(t, nil)
	h.taskRepo.createErr = errors.New("db down")

	task, err := h.processor.Process(context.Background(), msg("U_sender", "<@U1> email the client"))
	assert.Error(t, err)
	assert.Nil(t, task)
	assert.Empty(t, h.publisher.events, "no event without a persisted task")
}

func TestTaskTitle(t *testing.T) {
	assert.Equal(t, "schedule a sync", taskTitle("<@U1> <@U2> schedule a sync"))
	assert.Equal(t, "Untitled task", taskTitle("<@U1>"))

	long := "<@U1> " + "plan the quarterly review and collect the notes from every team before Friday morning standup"
	title := taskTitle(long)
	assert.LessOrEqual(t, len(title), 80)
}
