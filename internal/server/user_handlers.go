package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cli3338198/warbler/internal/models"
	"github.com/cli3338198/warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers renders the user directory, filtered by ?q= when present.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	users, err := s.userService.List(c.UserContext(), query, 50, 0)
	if err != nil {
		return s.renderAppError(c, err)
	}
	return s.render(c, "users/index", fiber.Map{
		"Users": users,
		"Query": query,
	})
}

// ShowUser renders a user's profile page with their messages.
func (s *Server) ShowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}

	viewerID := currentUserID(c)
	messages, err := s.messageService.GetByUserID(c.UserContext(), id, viewerID, 100, 0)
	if err != nil {
		return s.renderAppError(c, err)
	}

	stats, err := s.profileStats(c, user)
	if err != nil {
		return s.renderAppError(c, err)
	}

	following, err := s.userService.IsFollowing(c.UserContext(), viewerID, id)
	if err != nil {
		return s.renderAppError(c, err)
	}

	followsYou := false
	if viewerID != id {
		followsYou, err = s.followRepo.IsFollowedBy(c.UserContext(), viewerID, id)
		if err != nil {
			return s.renderAppError(c, err)
		}
	}

	return s.render(c, "users/show", fiber.Map{
		"User":        user,
		"Messages":    messages,
		"Stats":       stats,
		"IsFollowing": following,
		"FollowsYou":  followsYou,
	})
}

// profileStats collects the counters shown in a profile header.
func (s *Server) profileStats(c *fiber.Ctx, user *models.User) (fiber.Map, error) {
	ctx := c.UserContext()

	followingCount, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followersCount, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	liked, err := s.messageRepo.LikedMessages(ctx, user.ID, user.ID)
	if err != nil {
		return nil, err
	}

	return fiber.Map{
		"Following": followingCount,
		"Followers": followersCount,
		"Likes":     len(liked),
	}, nil
}

// ShowFollowing renders the people a user follows.
func (s *Server) ShowFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}
	following, err := s.userService.Following(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}

	return s.render(c, "users/following", fiber.Map{
		"User":  user,
		"Users": following,
	})
}

// ShowFollowers renders a user's followers.
func (s *Server) ShowFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}
	followers, err := s.userService.Followers(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}

	return s.render(c, "users/followers", fiber.Map{
		"User":  user,
		"Users": followers,
	})
}

// ShowLikes renders the messages a user has liked.
func (s *Server) ShowLikes(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return s.renderAppError(c, err)
	}
	liked, err := s.messageService.LikedMessages(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return s.renderAppError(c, err)
	}

	return s.render(c, "users/likes", fiber.Map{
		"User":     user,
		"Messages": liked,
	})
}

// FollowUser adds the target to the viewer's following list.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	viewerID := currentUserID(c)
	if err := s.userService.Follow(c.UserContext(), viewerID, targetID); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			s.setFlash(c, "warning", appErr.Message)
			return c.Redirect(fmt.Sprintf("/users/%d/following", viewerID), fiber.StatusSeeOther)
		}
		return s.renderAppError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/users/%d/following", viewerID), fiber.StatusSeeOther)
}

// UnfollowUser removes the target from the viewer's following list.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return s.renderNotFound(c)
	}

	viewerID := currentUserID(c)
	if err := s.userService.Unfollow(c.UserContext(), viewerID, targetID); err != nil {
		return s.renderAppError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/users/%d/following", viewerID), fiber.StatusSeeOther)
}

// ShowProfileForm renders the profile edit form pre-filled with the
// viewer's current details.
func (s *Server) ShowProfileForm(c *fiber.Ctx) error {
	return s.render(c, "users/edit", fiber.Map{
		"User": currentUser(c),
	})
}

// UpdateProfile applies profile edits after re-checking the password.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	input := service.UpdateProfileInput{
		Username:       strings.TrimSpace(c.FormValue("username")),
		Email:          strings.TrimSpace(c.FormValue("email")),
		ImageURL:       strings.TrimSpace(c.FormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(c.FormValue("header_image_url")),
		Bio:            c.FormValue("bio"),
		Location:       strings.TrimSpace(c.FormValue("location")),
		Password:       c.FormValue("password"),
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), viewerID, input)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			return s.renderAppError(c, err)
		}
		switch appErr.Code {
		case models.CodeUnauthorized:
			s.setFlash(c, "danger", appErr.Message)
			return c.Redirect("/", fiber.StatusSeeOther)
		case models.CodeValidation, models.CodeDuplicateIdentity:
			s.setFlash(c, "danger", appErr.Message)
			return s.render(c, "users/edit", fiber.Map{
				"User": currentUser(c),
			})
		default:
			return s.renderAppError(c, err)
		}
	}

	return c.Redirect(fmt.Sprintf("/users/%d", user.ID), fiber.StatusSeeOther)
}

// DeleteUser removes the viewer's account and everything they posted. The
// session goes first so a half-failed delete cannot leave a live login
// for a missing user.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	viewerID := currentUserID(c)

	if sess := currentSession(c); sess != nil {
		_ = s.sessions.Destroy(c.UserContext(), sess.ID)
	}
	s.clearSessionCookie(c)

	if err := s.userService.DeleteAccount(c.UserContext(), viewerID); err != nil {
		return s.renderAppError(c, err)
	}

	return c.Redirect("/signup", fiber.StatusSeeOther)
}
