package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"recuring/internal/model"
	"recuring/internal/service"
)

type createTaskRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Text      string  `json:"text" validate:"required"`
	GroupName *string `json:"group_name"`
	Completed bool    `json:"completed"`
}

type updateTaskRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type createTaskResponse struct {
	*model.Task
	Recurrence *model.Task `json:"recurrence"`
}

type updateTaskResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type deleteTaskResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	var req createTaskRequest
	if err := h.bind(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	input := service.TaskInput{Date: req.Date, Text: req.Text, Completed: req.Completed}
	if req.GroupName != nil {
		input.Group = *req.GroupName
	}
	task, next, err := h.tasks.AddTask(r.Context(), userID, input)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, createTaskResponse{Task: task, Recurrence: next})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := h.bind(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), userID, taskID, model.TaskUpdate{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updateTaskResponse{Message: "Task updated successfully", Updated: updated})
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := h.tasks.DeleteTask(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, deleteTaskResponse{Message: "Task deleted successfully", Deleted: deleted})
}

// pendingTasks lists incomplete tasks for ?date=, defaulting to today.
func (h *Handler) pendingTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.today()
	}
	tasks, err := h.tasks.ListPending(r.Context(), userID, date)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	groups, err := h.tasks.ListGroups(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if groups == nil {
		groups = []string{}
	}
	respondJSON(w, http.StatusOK, groups)
}

func taskIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		respondMessage(w, http.StatusBadRequest, "Invalid task id")
		return 0, false
	}
	return uint(id), true
}
