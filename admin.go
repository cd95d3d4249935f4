package folio

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/models"
)

const (
	loginPath             = "/admin/login/"
	dashboardRecentCount  = 5
	msgTitleRequired      = "Title is required."
	msgTitleNeedsLetters  = "Title must contain at least one letter or number."
	msgProjectTitleExists = "A project with this title already exists."
	msgPostTitleExists    = "A post with this title already exists."
)

func redirectWithMsg(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}

func formBool(c echo.Context, name string) *bool {
	v := c.FormValue(name) != ""
	return &v
}

func formString(c echo.Context, name string) *string {
	v := strings.TrimSpace(c.FormValue(name))
	return &v
}

// Login

func (a *App) handleLoginForm(c echo.Context) error {
	if auth.CurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(LoginPage{Page: a.page(c, "Admin Login")}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	username := strings.TrimSpace(c.FormValue("username"))
	lp := LoginPage{Page: a.page(c, "Admin Login"), Username: username}

	if !a.loginLimiter.Check(ip) {
		lp.Error = "Too many login attempts. Try again later."
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.AdminLogin(lp))
	}
	id, err := a.Auth.VerifyCredentials(c.Request().Context(), username, c.FormValue("password"))
	if err != nil {
		return err
	}
	if id == nil {
		a.loginLimiter.Record(ip)
		a.logger.Warn("admin login failed", "username", username, "ip", ip)
		lp.Error = "Invalid username or password."
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(lp))
	}
	if err := auth.Login(c, id.ID); err != nil {
		return err
	}
	a.logger.Info("admin login successful", "username", id.Username)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := auth.Logout(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, loginPath)
}

// Dashboard

func (a *App) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	projects, err := a.Repos.Projects.Count(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Repos.Posts.Count(ctx)
	if err != nil {
		return err
	}
	unread, err := a.Repos.Contacts.UnreadCount(ctx)
	if err != nil {
		return err
	}
	contacts, err := a.Repos.Contacts.List(ctx)
	if err != nil {
		return err
	}
	if len(contacts) > dashboardRecentCount {
		contacts = contacts[:dashboardRecentCount]
	}
	return Render(c, a.Views.AdminDashboard(DashboardPage{
		Page:           a.page(c, "Dashboard"),
		ProjectCount:   projects,
		PostCount:      posts,
		UnreadCount:    unread,
		RecentContacts: contacts,
	}))
}

// Projects

func (a *App) handleAdminProjects(c echo.Context) error {
	projects, err := a.Repos.Projects.List(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminProjects(ProjectListPage{Page: a.page(c, "Projects"), Projects: projects}))
}

func (a *App) handleNewProject(c echo.Context) error {
	return Render(c, a.Views.AdminProjectForm(ProjectFormPage{
		Page:    a.page(c, "New Project"),
		Project: models.Project{Published: true},
	}))
}

// projectInput reads the project form. The thumbnail is the uploaded file
// when one was sent, otherwise the submitted path.
func (a *App) projectInput(c echo.Context) (models.ProjectInput, error) {
	in := models.ProjectInput{
		Title:       formString(c, "title"),
		Category:    formString(c, "category"),
		Description: formString(c, "description"),
		Content:     models.String(c.FormValue("content")),
		Thumbnail:   formString(c, "thumbnail"),
		Images:      formString(c, "images"),
		Link:        formString(c, "link"),
		Github:      formString(c, "github"),
		Featured:    formBool(c, "featured"),
		Published:   formBool(c, "published"),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(c.FormValue("sort_order"))); err == nil {
		in.SortOrder = &n
	}
	path, err := a.saveUpload(c, "thumbnail_file")
	if err != nil {
		return in, err
	}
	if path != "" {
		in.Thumbnail = &path
	}
	return in, nil
}

// projectFormError re-renders the form for recoverable errors and returns
// handled=false for everything else.
func (a *App) projectFormError(c echo.Context, current models.Project, in models.ProjectInput, err error) (bool, error) {
	var msg string
	switch {
	case isUploadError(err):
		msg = err.Error()
	case errors.Is(err, models.ErrEmptySlug):
		msg = msgTitleNeedsLetters
	case isConflict(err):
		msg = msgProjectTitleExists
	default:
		return false, err
	}
	return true, a.renderProjectForm(c, in.Merge(current), msg)
}

func (a *App) renderProjectForm(c echo.Context, p models.Project, msg string) error {
	title := "New Project"
	if p.ID != 0 {
		title = "Edit Project"
	}
	page := a.page(c, title)
	page.Error = msg
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminProjectForm(ProjectFormPage{Page: page, Project: p}))
}

func (a *App) handleCreateProject(c echo.Context) error {
	in, err := a.projectInput(c)
	if err == nil && *in.Title == "" {
		return a.renderProjectForm(c, in.Merge(models.Project{}), msgTitleRequired)
	}
	if err == nil {
		_, err = a.Repos.Projects.Create(c.Request().Context(), in)
	}
	if err != nil {
		if handled, rerr := a.projectFormError(c, models.Project{}, in, err); handled || rerr != nil {
			return rerr
		}
	}
	return redirectWithMsg(c, "/admin/projects/", "Project created.")
}

func (a *App) loadProject(c echo.Context) (*models.Project, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return nil, nil
	}
	return a.Repos.Projects.Get(c.Request().Context(), id)
}

func (a *App) handleEditProject(c echo.Context) error {
	p, err := a.loadProject(c)
	if err != nil {
		return err
	}
	if p == nil {
		return a.renderNotFound(c)
	}
	return Render(c, a.Views.AdminProjectForm(ProjectFormPage{Page: a.page(c, "Edit Project"), Project: *p}))
}

func (a *App) handleUpdateProject(c echo.Context) error {
	current, err := a.loadProject(c)
	if err != nil {
		return err
	}
	if current == nil {
		return a.renderNotFound(c)
	}
	in, err := a.projectInput(c)
	if err == nil && *in.Title == "" {
		return a.renderProjectForm(c, in.Merge(*current), msgTitleRequired)
	}
	if err == nil {
		_, err = a.Repos.Projects.Update(c.Request().Context(), current.ID, in)
	}
	if err != nil {
		if handled, rerr := a.projectFormError(c, *current, in, err); handled || rerr != nil {
			return rerr
		}
	}
	return redirectWithMsg(c, "/admin/projects/", "Project updated.")
}

func (a *App) handleDeleteProject(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if _, err := a.Repos.Projects.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectWithMsg(c, "/admin/projects/", "Project deleted.")
}

// Posts

func (a *App) handleAdminPosts(c echo.Context) error {
	posts, err := a.Repos.Posts.List(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPosts(PostListPage{Page: a.page(c, "Posts"), Posts: posts}))
}

func (a *App) handleNewPost(c echo.Context) error {
	return Render(c, a.Views.AdminPostForm(PostFormPage{Page: a.page(c, "New Post")}))
}

func (a *App) postInput(c echo.Context) (models.PostInput, error) {
	in := models.PostInput{
		Title:     formString(c, "title"),
		Excerpt:   formString(c, "excerpt"),
		Content:   models.String(c.FormValue("content")),
		Thumbnail: formString(c, "thumbnail"),
		Tags:      models.String(strings.Join(models.SplitList(c.FormValue("tags")), ",")),
		Published: formBool(c, "published"),
	}
	path, err := a.saveUpload(c, "thumbnail_file")
	if err != nil {
		return in, err
	}
	if path != "" {
		in.Thumbnail = &path
	}
	return in, nil
}

func (a *App) postFormError(c echo.Context, current models.Post, in models.PostInput, err error) (bool, error) {
	var msg string
	switch {
	case isUploadError(err):
		msg = err.Error()
	case errors.Is(err, models.ErrEmptySlug):
		msg = msgTitleNeedsLetters
	case isConflict(err):
		msg = msgPostTitleExists
	default:
		return false, err
	}
	return true, a.renderPostForm(c, in.Merge(current), msg)
}

func (a *App) renderPostForm(c echo.Context, p models.Post, msg string) error {
	title := "New Post"
	if p.ID != 0 {
		title = "Edit Post"
	}
	page := a.page(c, title)
	page.Error = msg
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminPostForm(PostFormPage{Page: page, Post: p}))
}

func (a *App) handleCreatePost(c echo.Context) error {
	in, err := a.postInput(c)
	if err == nil && *in.Title == "" {
		return a.renderPostForm(c, in.Merge(models.Post{}), msgTitleRequired)
	}
	if err == nil {
		_, err = a.Repos.Posts.Create(c.Request().Context(), in)
	}
	if err != nil {
		if handled, rerr := a.postFormError(c, models.Post{}, in, err); handled || rerr != nil {
			return rerr
		}
	}
	return redirectWithMsg(c, "/admin/posts/", "Post created.")
}

func (a *App) loadPost(c echo.Context) (*models.Post, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return nil, nil
	}
	return a.Repos.Posts.Get(c.Request().Context(), id)
}

func (a *App) handleEditPost(c echo.Context) error {
	p, err := a.loadPost(c)
	if err != nil {
		return err
	}
	if p == nil {
		return a.renderNotFound(c)
	}
	return Render(c, a.Views.AdminPostForm(PostFormPage{Page: a.page(c, "Edit Post"), Post: *p}))
}

func (a *App) handleUpdatePost(c echo.Context) error {
	current, err := a.loadPost(c)
	if err != nil {
		return err
	}
	if current == nil {
		return a.renderNotFound(c)
	}
	in, err := a.postInput(c)
	if err == nil && *in.Title == "" {
		return a.renderPostForm(c, in.Merge(*current), msgTitleRequired)
	}
	if err == nil {
		_, err = a.Repos.Posts.Update(c.Request().Context(), current.ID, in)
	}
	if err != nil {
		if handled, rerr := a.postFormError(c, *current, in, err); handled || rerr != nil {
			return rerr
		}
	}
	return redirectWithMsg(c, "/admin/posts/", "Post updated.")
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if _, err := a.Repos.Posts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectWithMsg(c, "/admin/posts/", "Post deleted.")
}

// Contacts

func (a *App) handleAdminContacts(c echo.Context) error {
	contacts, err := a.Repos.Contacts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminContacts(ContactListPage{Page: a.page(c, "Messages"), Contacts: contacts}))
}

func (a *App) handleAdminContact(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	contact, err := a.Repos.Contacts.MarkRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if contact == nil {
		return a.renderNotFound(c)
	}
	return Render(c, a.Views.AdminContact(ContactPage{Page: a.page(c, "Message"), Contact: *contact}))
}

func (a *App) handleContactReplied(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	contact, err := a.Repos.Contacts.MarkReplied(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if contact == nil {
		return a.renderNotFound(c)
	}
	return redirectWithMsg(c, "/admin/contacts/"+strconv.FormatInt(id, 10)+"/", "Marked as replied.")
}

func (a *App) handleDeleteContact(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if _, err := a.Repos.Contacts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectWithMsg(c, "/admin/contacts/", "Message deleted.")
}

// Settings

func (a *App) handleAdminSettings(c echo.Context) error {
	return Render(c, a.Views.AdminSettings(SettingsPage{Page: a.page(c, "Settings"), Keys: models.SettingKeys}))
}

func (a *App) handleUpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	values := make(map[string]string)
	for _, key := range models.SettingKeys {
		if v, ok := form[key]; ok && len(v) > 0 {
			values[key] = strings.TrimSpace(v[0])
		}
	}

	path, err := a.saveUpload(c, "about_image_file")
	if err != nil {
		if !isUploadError(err) {
			return err
		}
		page := a.page(c, "Settings")
		page.Error = err.Error()
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminSettings(SettingsPage{Page: page, Keys: models.SettingKeys}))
	}

	if _, err := a.Repos.Settings.SetMultiple(ctx, values); err != nil {
		return err
	}
	if path != "" {
		if _, err := a.Repos.Settings.Set(ctx, models.SettingAboutImage, path); err != nil {
			return err
		}
	}
	return redirectWithMsg(c, "/admin/settings/", "Settings saved.")
}
