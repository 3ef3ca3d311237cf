package users

import (
	"context"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

// Service собирает проекции пользователей и управляет подписками.
type Service struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	recipes       repository.RecipeRepository
}

func NewService(
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	recipes repository.RecipeRepository,
) *Service {
	return &Service{
		users:         users,
		subscriptions: subscriptions,
		recipes:       recipes,
	}
}

// GetUser возвращает проекцию пользователя глазами viewer.
// viewerID = 0 — аноним, is_subscribed всегда false.
func (s *Service) GetUser(ctx context.Context, viewerID, id int64) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isSubscribed, err := s.isSubscribed(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user, isSubscribed)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context, viewerID int64, limit, offset int) ([]UserResponse, int64, error) {
	list, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]UserResponse, len(list))
	for i := range list {
		isSubscribed, err := s.isSubscribed(ctx, viewerID, list[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i] = toUserResponse(&list[i], isSubscribed)
	}
	return out, total, nil
}

// Subscribe подписывает userID на authorID. Подписка на себя и
// повторная подписка запрещены.
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*SubscriptionResponse, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	if err := s.subscriptions.Add(ctx, userID, authorID); err != nil {
		return nil, err
	}

	return s.buildSubscription(ctx, author, recipesLimit)
}

func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.subscriptions.Remove(ctx, userID, authorID)
}

// Subscriptions возвращает авторов, на которых подписан пользователь,
// с их рецептами. recipesLimit ограничивает вложенный список
// рецептов каждого автора; 0 — без ограничения.
func (s *Service) Subscriptions(ctx context.Context, userID int64, recipesLimit, limit, offset int) ([]SubscriptionResponse, int64, error) {
	authors, total, err := s.subscriptions.ListAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.buildSubscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		// В списке подписок is_subscribed истинно по построению.
		sub.IsSubscribed = true
		out = append(out, *sub)
	}
	return out, total, nil
}

func (s *Service) buildSubscription(ctx context.Context, author *domain.User, recipesLimit int) (*SubscriptionResponse, error) {
	recipes, err := s.recipes.ListShortByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}

	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	return &SubscriptionResponse{
		UserResponse: toUserResponse(author, true),
		Recipes:      toShortRecipes(recipes),
		RecipesCount: count,
	}, nil
}

func (s *Service) isSubscribed(ctx context.Context, viewerID, authorID int64) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return s.subscriptions.Exists(ctx, viewerID, authorID)
}
