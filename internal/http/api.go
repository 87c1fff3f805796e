package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"userdir/internal/domain"
	"userdir/internal/repository"
	"userdir/internal/service"
	"userdir/internal/upload"
	"userdir/internal/web"
)

// imageField is the file field name used by the create and edit forms.
const imageField = "image"

// Handler wires the form routes to the user service and upload receiver.
type Handler struct {
	users   service.UserService
	uploads *upload.Receiver
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, uploads *upload.Receiver, logger *logrus.Logger) *Handler {
	return &Handler{
		users:   users,
		uploads: uploads,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(web.Templates())
	router.Use(RequestID(h.logger))

	router.GET("/", h.page("index.html"))
	router.GET("/create_user", h.page("create_user.html"))
	router.GET("/edit_user", h.page("edit_user.html"))
	router.GET("/view_user", h.page("view_user.html"))
	router.GET("/delete_user", h.page("delete_user.html"))
	router.GET("/uploads/:name", h.serveUpload)

	router.POST("/create_user", h.createUser)
	router.POST("/search_user", h.searchUser)
	router.POST("/edit_user", h.editUser)
	router.POST("/view_user", h.viewUsers)
	router.POST("/delete_user", h.deleteUser)
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := web.Page(name)
		if err != nil {
			h.fail(c, "serve page", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
}

func (h *Handler) serveUpload(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	c.File(filepath.Join(h.uploads.Dir(), name))
}

func (h *Handler) createUser(c *gin.Context) {
	filename, err := h.resolveUpload(c)
	if err != nil {
		h.fail(c, "receive upload", err)
		return
	}

	input := formInput(c)
	input.Image = filename

	if _, err := h.users.Create(c.Request.Context(), input); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			c.HTML(http.StatusConflict, "message.html", gin.H{
				"Title":   "Username taken",
				"Message": "A user with that username already exists.",
			})
			return
		}
		h.fail(c, "create user", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) searchUser(c *gin.Context) {
	username := c.PostForm("username")

	user, err := h.users.Search(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c, username)
			return
		}
		h.fail(c, "search user", err)
		return
	}

	c.HTML(http.StatusOK, "search_result.html", gin.H{
		"User":     user,
		"ImageURL": imageURL(user.Image),
	})
}

func (h *Handler) editUser(c *gin.Context) {
	previousUsername := c.PostForm("edit-username")

	filename, err := h.resolveUpload(c)
	if err != nil {
		h.fail(c, "receive upload", err)
		return
	}

	input := formInput(c)
	input.Image = filename

	if _, err := h.users.Update(c.Request.Context(), previousUsername, input); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.notFound(c, previousUsername)
		case errors.Is(err, repository.ErrDuplicateUsername):
			c.HTML(http.StatusConflict, "message.html", gin.H{
				"Title":   "Username taken",
				"Message": "A user with that username already exists.",
			})
		default:
			h.fail(c, "update user", err)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) viewUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list users", err)
		return
	}

	views := make([]userView, len(users))
	for i := range users {
		views[i] = newUserView(users[i])
	}
	c.HTML(http.StatusOK, "user_list.html", gin.H{"Users": views})
}

func (h *Handler) deleteUser(c *gin.Context) {
	username := c.PostForm("username")

	if _, err := h.users.Delete(c.Request.Context(), username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c, username)
			return
		}
		h.fail(c, "delete user", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// resolveUpload stores the submitted image, if any, and returns its filename.
// Plain urlencoded submissions and multipart forms without a file both yield
// an empty filename.
func (h *Handler) resolveUpload(c *gin.Context) (string, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return h.uploads.Store(fh)
}

func (h *Handler) notFound(c *gin.Context, username string) {
	c.HTML(http.StatusNotFound, "message.html", gin.H{
		"Title":   "User not found",
		"Message": "No user with username " + username + " exists.",
	})
}

// fail logs the failing operation and answers with a generic 500 body.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	if h.logger != nil {
		h.logger.WithField("operation", op).Errorf("%v", err)
	}
	c.HTML(http.StatusInternalServerError, "message.html", gin.H{
		"Title":   "Something went wrong",
		"Message": "The request could not be completed.",
	})
}

func formInput(c *gin.Context) service.UserInput {
	return service.UserInput{
		Username:   c.PostForm("user-name"),
		Email:      c.PostForm("email"),
		Telephone:  c.PostForm("telephone"),
		FirstName:  c.PostForm("first-name"),
		LastName:   c.PostForm("last-name"),
		BirthDate:  c.PostForm("birth-date"),
		Profession: c.PostForm("profession"),
	}
}

type userView struct {
	domain.User
	ImageURL string
}

func newUserView(user domain.User) userView {
	return userView{User: user, ImageURL: imageURL(user.Image)}
}

// imageURL maps a stored filename to its public path. A record without an
// image gets a placeholder path; a stale filename simply renders as a broken
// image, never an error.
func imageURL(name string) string {
	if name == "" {
		return "/uploads/placeholder.png"
	}
	return "/uploads/" + name
}
