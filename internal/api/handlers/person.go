package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/notification"
	"github.com/baseplate/persons/internal/core/person"
	"github.com/baseplate/persons/internal/core/search"
	"github.com/baseplate/persons/internal/core/validation"
)

type PersonHandler struct {
	personService *person.Service
	createRules   *validation.Adapter[*person.CreateRequest]
	updateRules   *validation.Adapter[*person.UpdateRequest]
}

func NewPersonHandler(personService *person.Service) *PersonHandler {
	schema := validation.NewStructSchema()
	return &PersonHandler{
		personService: personService,
		createRules:   validation.NewAdapter[*person.CreateRequest](schema),
		updateRules:   validation.NewAdapter[*person.UpdateRequest](schema),
	}
}

func (h *PersonHandler) Create(c *gin.Context) {
	var req person.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := notification.New()
	if !h.createRules.Validate(n, &req) {
		validationFailed(c, n)
		return
	}

	p, err := h.personService.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	p, err := h.personService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PersonHandler) Update(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	var req person.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := notification.New()
	if !h.updateRules.Validate(n, &req) {
		validationFailed(c, n)
		return
	}

	p, err := h.personService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PersonHandler) Delete(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	if err := h.personService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Search reads page, per_page, sort, sort_dir and filter from the query
// string. Malformed values fall back to their defaults.
func (h *PersonHandler) Search(c *gin.Context) {
	props := search.Props[string]{}
	if v, ok := c.GetQuery("page"); ok {
		props.Page = v
	}
	if v, ok := c.GetQuery("per_page"); ok {
		props.PerPage = v
	}
	if v, ok := c.GetQuery("sort"); ok {
		props.Sort = v
	}
	if v, ok := c.GetQuery("sort_dir"); ok {
		props.SortDir = v
	}
	if v, ok := c.GetQuery("filter"); ok {
		props.Filter = &v
	}

	result, err := h.personService.Search(c.Request.Context(), search.NewParams(props))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := result.ToJSON(true)
	resp["next_page"] = pageOrNil(result.NextPage())
	resp["previous_page"] = pageOrNil(result.PreviousPage())
	itemsRange := result.ItemsRange()
	resp["from"] = itemsRange.From
	resp["to"] = itemsRange.To

	c.JSON(http.StatusOK, resp)
}

func (h *PersonHandler) fail(c *gin.Context, err error) {
	switch {
	case validation.IsValidationError(err):
		validationFailed(c, validation.GetNotification(err))
	case errors.Is(err, person.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, person.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func validationFailed(c *gin.Context, n *notification.Notification) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": n.ToJSON(),
		"fields":  n.ErrorsAsObject(),
	})
}

func personID(c *gin.Context) (identity.ID, bool) {
	id, err := identity.Create(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return identity.ID{}, false
	}
	return id, true
}

func pageOrNil(page int, ok bool) any {
	if !ok {
		return nil
	}
	return page
}
