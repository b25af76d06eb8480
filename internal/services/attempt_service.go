package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/events"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

// AttemptService orchestrates the attempt lifecycle. It is the only
// component allowed to change attempt status; the selector, clock, ledger
// and scoring engine do their work on its behalf.
type AttemptService interface {
	Start(ctx context.Context, userID string, quizID uint) (*StartAttemptResponse, error)
	SaveAnswer(ctx context.Context, userID string, quizID uint, req *SaveAnswerRequest) error
	Finish(ctx context.Context, userID string, quizID uint) (*FinishAttemptResponse, error)
	Review(ctx context.Context, userID string, quizID uint) (*ReviewResponse, error)
}

// QuizDefinitionProvider supplies quiz definitions from the content
// collaborator. Implementations may cache; the engine treats definitions as
// read-only.
type QuizDefinitionProvider interface {
	GetDefinition(ctx context.Context, quizID uint) (*models.Quiz, error)
}

// NewRepositoryQuizProvider adapts the quiz repository into a definition
// provider without caching.
func NewRepositoryQuizProvider(repo repositories.Repository) QuizDefinitionProvider {
	return &repositoryQuizProvider{repo: repo}
}

type repositoryQuizProvider struct {
	repo repositories.Repository
}

func (p *repositoryQuizProvider) GetDefinition(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := p.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("%w: get quiz definition: %v", ErrUpstreamUnavailable, err)
	}
	return quiz, nil
}

type attemptService struct {
	repo      repositories.Repository
	quizzes   QuizDefinitionProvider
	selector  QuestionPoolSelector
	clock     SessionClock
	ledger    AnswerLedger
	scoring   ScoringEngine
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
	now       func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	quizzes QuizDefinitionProvider,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		quizzes:   quizzes,
		selector:  NewQuestionPoolSelector(),
		clock:     NewSessionClock(),
		ledger:    NewAnswerLedger(repo),
		scoring:   NewScoringEngine(),
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, userID string, quizID uint) (*StartAttemptResponse, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", quizID, "user_id", userID)

	if err := s.validator.Var(userID, "required"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.quizzes.GetDefinition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.Active || !quiz.Visible {
		return nil, ErrQuizNotAvailable
	}

	attempt, err := s.getOrCreateAttempt(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if attempt.Status == models.AttemptInProgress {
		if !s.clock.IsExpired(attempt.EndTime, now) {
			// Duplicate start while the window is open: return the existing
			// boundary unchanged so repeated calls cannot extend time.
			s.logger.Info("Resuming unexpired attempt", "attempt_id", attempt.ID)
			return s.buildStartResponse(attempt, quiz, now)
		}

		// Stale cycle: settle it with whatever was captured before anything
		// else can happen.
		if _, err := s.completeAttempt(ctx, attempt, quiz); err != nil {
			return nil, err
		}
		attempt, err = s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
		if err != nil {
			return nil, fmt.Errorf("%w: reload attempt: %v", ErrUpstreamUnavailable, err)
		}
	}

	if attempt.Status == models.AttemptCompletedPassed {
		// Passed is absorbing: success with no state change.
		return &StartAttemptResponse{Status: models.AttemptCompletedPassed}, nil
	}

	// not_started or completed_failed: begin a fresh cycle.
	selected, clamped, err := s.selector.Select(quiz.PoolSize(), quiz.QuestionsToShow)
	if err != nil {
		return nil, err
	}
	if clamped {
		s.logger.Warn("Quiz asks for more questions than its pool holds",
			"quiz_id", quiz.ID,
			"questions_to_show", quiz.QuestionsToShow,
			"pool_size", quiz.PoolSize())
	}

	encoded, err := EncodeIndices(selected)
	if err != nil {
		return nil, fmt.Errorf("encode random indices: %w", err)
	}

	start, end := s.clock.Begin(quiz.DurationMinutes, now)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		from := []models.AttemptStatus{models.AttemptNotStarted, models.AttemptCompletedFailed}
		if err := tx.Attempt().BeginCycle(ctx, attempt.ID, from, encoded, start, end); err != nil {
			return err
		}
		return tx.Attempt().DeleteAnswers(ctx, attempt.ID)
	})
	if err != nil {
		if repositories.IsStaleStatusError(err) {
			return nil, ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("%w: begin attempt cycle: %v", ErrUpstreamUnavailable, err)
	}

	attempt.Status = models.AttemptInProgress
	attempt.RandomIndices = encoded
	attempt.StartTime = &start
	attempt.EndTime = &end
	attempt.Answers = nil
	attempt.Score = 0

	if err := s.publisher.PublishQuizEvent(ctx, events.NewAttemptStartedEvent(
		attempt.ID, quiz.ID, quiz.Title, userID, start, end, len(selected))); err != nil {
		s.logger.Error("Failed to publish attempt started event", "attempt_id", attempt.ID, "error", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", userID,
		"total_shown", len(selected),
		"ends_at", end)

	return s.buildStartResponse(attempt, quiz, now)
}

func (s *attemptService) SaveAnswer(ctx context.Context, userID string, quizID uint, req *SaveAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.quizzes.GetDefinition(ctx, quizID)
	if err != nil {
		return err
	}

	attempt, err := s.repo.Attempt().GetByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotStarted
		}
		return fmt.Errorf("%w: get attempt: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case attempt.Status == models.AttemptNotStarted:
		return ErrAttemptNotStarted
	case attempt.Status.IsTerminal():
		return ErrAttemptAlreadyCompleted
	}

	now := s.now()
	if s.clock.IsExpired(attempt.EndTime, now) {
		// The boundary passed; settle the attempt and report expiry. The
		// late answer is dropped, not scored.
		attempt, err = s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
		if err != nil {
			return fmt.Errorf("%w: reload attempt: %v", ErrUpstreamUnavailable, err)
		}
		if _, err := s.completeAttempt(ctx, attempt, quiz); err != nil {
			return err
		}
		return ErrAttemptTimeExpired
	}

	return s.ledger.SaveAnswer(ctx, attempt, quiz, req.DisplayPosition, req.SelectedOption, now)
}

func (s *attemptService) Finish(ctx context.Context, userID string, quizID uint) (*FinishAttemptResponse, error) {
	s.logger.Info("Finishing quiz attempt", "quiz_id", quizID, "user_id", userID)

	quiz, err := s.quizzes.GetDefinition(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotStarted
		}
		return nil, fmt.Errorf("%w: get attempt: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case attempt.Status == models.AttemptNotStarted:
		return nil, ErrAttemptNotStarted
	case attempt.Status.IsTerminal():
		// Duplicate finish: replay the persisted result, no re-scoring and
		// no second completion event.
		return s.persistedResult(attempt, quiz), nil
	}

	return s.completeAttempt(ctx, attempt, quiz)
}

func (s *attemptService) Review(ctx context.Context, userID string, quizID uint) (*ReviewResponse, error) {
	quiz, err := s.quizzes.GetDefinition(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("%w: get attempt: %v", ErrUpstreamUnavailable, err)
	}

	if attempt.Status == models.AttemptInProgress && s.clock.IsExpired(attempt.EndTime, s.now()) {
		if _, err := s.completeAttempt(ctx, attempt, quiz); err != nil {
			return nil, err
		}
		attempt, err = s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
		if err != nil {
			return nil, fmt.Errorf("%w: reload attempt: %v", ErrUpstreamUnavailable, err)
		}
	}

	if !attempt.Status.IsTerminal() {
		return nil, ErrAttemptNotReviewable
	}

	return s.buildReviewResponse(attempt, quiz)
}

// ===== LIFECYCLE HELPERS =====

func (s *attemptService) getOrCreateAttempt(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
	if err == nil {
		return attempt, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("%w: get attempt: %v", ErrUpstreamUnavailable, err)
	}

	fresh := &models.QuizAttempt{
		QuizID: quizID,
		UserID: userID,
		Status: models.AttemptNotStarted,
	}
	if err := s.repo.Attempt().Create(ctx, fresh); err != nil {
		// A concurrent first start may have won the unique (user, quiz)
		// index; fall back to the row it created.
		attempt, ferr := s.repo.Attempt().GetByUserAndQuizWithAnswers(ctx, userID, quizID)
		if ferr != nil {
			return nil, fmt.Errorf("%w: create attempt: %v", ErrUpstreamUnavailable, err)
		}
		return attempt, nil
	}
	return fresh, nil
}

// completeAttempt scores an in_progress attempt from its persisted answers
// and applies the terminal transition with compare-and-set semantics. Losing
// the race degrades to replaying the winner's persisted result.
func (s *attemptService) completeAttempt(ctx context.Context, attempt *models.QuizAttempt, quiz *models.Quiz) (*FinishAttemptResponse, error) {
	correct, total, err := s.scoring.Score(attempt, quiz)
	if err != nil {
		return nil, err
	}
	percentage := Percentage(correct, total)
	passed := percentage >= quiz.PassThreshold()

	now := s.now().UTC()
	status := models.AttemptCompletedFailed
	var solvedAt *time.Time
	if passed {
		status = models.AttemptCompletedPassed
		solvedAt = &now
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().CompleteInProgress(ctx, attempt.ID, status, correct, solvedAt, !passed); err != nil {
			return err
		}
		if !passed {
			// Failed cycles leave a clean slate for the retake.
			return tx.Attempt().DeleteAnswers(ctx, attempt.ID)
		}
		return nil
	})
	if err != nil {
		if repositories.IsStaleStatusError(err) {
			current, ferr := s.repo.Attempt().GetByID(ctx, attempt.ID)
			if ferr != nil {
				return nil, fmt.Errorf("%w: reload attempt: %v", ErrUpstreamUnavailable, ferr)
			}
			if current.Status.IsTerminal() {
				return s.persistedResult(current, quiz), nil
			}
			return nil, ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("%w: complete attempt: %v", ErrUpstreamUnavailable, err)
	}

	if err := s.publisher.PublishQuizEvent(ctx, events.NewAttemptCompletedEvent(
		attempt.ID, quiz.ID, quiz.Title, attempt.UserID, now, correct, total, percentage, passed)); err != nil {
		// Best-effort notification; the scoring transition stands.
		s.logger.Error("Failed to publish attempt completed event", "attempt_id", attempt.ID, "error", err)
	}

	s.logger.Info("Quiz attempt completed",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"user_id", attempt.UserID,
		"correct", correct,
		"total_shown", total,
		"percentage", percentage,
		"passed", passed)

	return &FinishAttemptResponse{
		Status:       status,
		CorrectCount: correct,
		TotalShown:   total,
		Percentage:   percentage,
		CanRetake:    !passed,
	}, nil
}

// persistedResult rebuilds a finish response from an already-terminal
// attempt without touching state.
func (s *attemptService) persistedResult(attempt *models.QuizAttempt, quiz *models.Quiz) *FinishAttemptResponse {
	total := s.totalShown(attempt, quiz)
	return &FinishAttemptResponse{
		Status:       attempt.Status,
		CorrectCount: attempt.Score,
		TotalShown:   total,
		Percentage:   Percentage(attempt.Score, total),
		CanRetake:    attempt.Status == models.AttemptCompletedFailed,
	}
}

// totalShown recovers the size of the shown set. Failed attempts clear
// their indices, so the quiz definition supplies the count there.
func (s *attemptService) totalShown(attempt *models.QuizAttempt, quiz *models.Quiz) int {
	if indices, err := DecodeIndices(attempt.RandomIndices); err == nil && len(indices) > 0 {
		return len(indices)
	}
	if quiz.QuestionsToShow < quiz.PoolSize() {
		return quiz.QuestionsToShow
	}
	return quiz.PoolSize()
}

// ===== RESPONSE BUILDERS =====

func (s *attemptService) buildStartResponse(attempt *models.QuizAttempt, quiz *models.Quiz, now time.Time) (*StartAttemptResponse, error) {
	indices, err := DecodeIndices(attempt.RandomIndices)
	if err != nil {
		return nil, fmt.Errorf("decode random indices: %w", err)
	}

	questions := make([]QuestionView, 0, len(indices))
	for displayPos, poolPos := range indices {
		if poolPos < 0 || poolPos >= len(quiz.Questions) {
			return nil, NewSelectionError("pool position", poolPos, len(quiz.Questions))
		}
		question := &quiz.Questions[poolPos]
		options, err := question.OptionList()
		if err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
		questions = append(questions, QuestionView{
			DisplayPosition: displayPos,
			QuestionID:      question.ID,
			Prompt:          question.Prompt,
			ImageURL:        question.ImageURL,
			Options:         options,
		})
	}

	return &StartAttemptResponse{
		Status:           attempt.Status,
		EndTime:          attempt.EndTime,
		RemainingSeconds: s.clock.RemainingSeconds(attempt.EndTime, now),
		Questions:        questions,
	}, nil
}

func (s *attemptService) buildReviewResponse(attempt *models.QuizAttempt, quiz *models.Quiz) (*ReviewResponse, error) {
	indices, err := DecodeIndices(attempt.RandomIndices)
	if err != nil {
		return nil, fmt.Errorf("decode random indices: %w", err)
	}

	byPosition := make(map[int]*models.AttemptAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		byPosition[ans.Position] = ans
	}

	questions := make([]ReviewQuestion, 0, len(indices))
	for displayPos, poolPos := range indices {
		if poolPos < 0 || poolPos >= len(quiz.Questions) {
			return nil, NewSelectionError("pool position", poolPos, len(quiz.Questions))
		}
		question := &quiz.Questions[poolPos]
		options, err := question.OptionList()
		if err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}

		rq := ReviewQuestion{
			DisplayPosition: displayPos,
			QuestionID:      question.ID,
			Prompt:          question.Prompt,
			ImageURL:        question.ImageURL,
			Options:         options,
			CorrectOption:   question.CorrectOption,
		}
		if ans, ok := byPosition[displayPos]; ok {
			selected := ans.SelectedOption
			answeredAt := ans.AnsweredAt
			rq.SelectedOption = &selected
			rq.AnsweredAt = &answeredAt
		}
		questions = append(questions, rq)
	}

	total := s.totalShown(attempt, quiz)
	return &ReviewResponse{
		Status:       attempt.Status,
		CorrectCount: attempt.Score,
		TotalShown:   total,
		Percentage:   Percentage(attempt.Score, total),
		Questions:    questions,
	}, nil
}
