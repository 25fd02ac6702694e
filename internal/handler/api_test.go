package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
}

func TestAuthFlow(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	require.NotEmpty(t, token)

	status, env := do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"email":    "rivera@example.com",
		"password": "correct horse battery",
	}))
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	status, env = do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"email":    "rivera@example.com",
		"password": "wrong",
	}))
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, env.Success)
	require.Equal(t, "unauthenticated", env.Code)

	status, env = do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name":     "Impostor",
		"email":    "rivera@example.com",
		"password": "another password",
	}))
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "email_taken", env.Code)
}

func TestTeacherRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	for _, req := range []*http.Request{
		jsonRequest(t, http.MethodPost, "/api/v1/classrooms", fiber.Map{"name": "Period 3"}),
		httptest.NewRequest(http.MethodGet, "/api/v1/classrooms", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/contests/1", nil),
		jsonRequest(t, http.MethodPatch, "/api/v1/contests/1/status", fiber.Map{"status": "VOTING"}),
		httptest.NewRequest(http.MethodDelete, "/api/v1/contests/1", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/submissions/1", nil),
	} {
		status, env := do(t, app, req)
		require.Equal(t, http.StatusUnauthorized, status, "%s %s", req.Method, req.URL.Path)
		require.Equal(t, "unauthenticated", env.Code)
	}
}

func TestParticipantRoutesBypassTeacherGuard(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	_, joinCode := createContest(t, app, token, "STUDENT_UPLOAD")

	// No Authorization header anywhere on the participant surface.
	session := joinContest(t, app, joinCode, "Alice")
	require.NotEmpty(t, session)
}

func TestContestLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	contestID, joinCode := createContest(t, app, token, "STUDENT_UPLOAD")

	alice := joinContest(t, app, joinCode, "Alice")
	bob := joinContest(t, app, joinCode, "Bob")

	// Alice submits her pair.
	status, env := do(t, app, withSession(multipartRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/submissions", contestID), map[string]string{
		"ai_image":   "ai.png",
		"real_image": "real.png",
	}), alice))
	require.Equal(t, http.StatusCreated, status)

	var submission struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &submission)

	// Bob cannot vote before the phase flips.
	status, env = do(t, app, withSession(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/votes", contestID), fiber.Map{
		"submission_id": submission.ID,
	}), bob))
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_phase", env.Code)

	setStatus(t, app, token, contestID, "VOTING")

	status, _ = do(t, app, withSession(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/votes", contestID), fiber.Map{
		"submission_id": submission.ID,
	}), bob))
	require.Equal(t, http.StatusCreated, status)

	// The teacher dashboard shows the tally.
	status, env = do(t, app, authed(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/contests/%d", contestID), nil), token))
	require.Equal(t, http.StatusOK, status)

	var summary struct {
		Participants []struct {
			Nickname string `json:"nickname"`
		} `json:"participants"`
		Submissions []struct {
			SubmissionID uint  `json:"submission_id"`
			VoteCount    int64 `json:"vote_count"`
		} `json:"submissions"`
	}
	decodeData(t, env, &summary)
	require.Len(t, summary.Participants, 2)
	require.Len(t, summary.Submissions, 1)
	require.Equal(t, int64(1), summary.Submissions[0].VoteCount)

	// Participants poll the same read model through their own route.
	status, _ = do(t, app, withSession(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/contests/%d/view", contestID), nil), alice))
	require.Equal(t, http.StatusOK, status)
}

func TestJoinErrorMapping(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	contestID, joinCode := createContest(t, app, token, "STUDENT_UPLOAD")
	joinContest(t, app, joinCode, "Alice")

	// Unknown code: 404 before anything else.
	status, env := do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/contests/join", fiber.Map{
		"join_code": "ZZZZZ9",
		"nickname":  "Alice",
	}))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", env.Code)

	// Taken nickname, case-insensitive: 409.
	status, env = do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/contests/join", fiber.Map{
		"join_code": joinCode,
		"nickname":  "ALICE",
	}))
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "nickname_taken", env.Code)

	// Closed contest: the phase error outranks the nickname conflict.
	setStatus(t, app, token, contestID, "VOTING")
	status, env = do(t, app, jsonRequest(t, http.MethodPost, "/api/v1/contests/join", fiber.Map{
		"join_code": joinCode,
		"nickname":  "Alice",
	}))
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_phase", env.Code)
}

func TestSubmitRequiresBothFiles(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	contestID, joinCode := createContest(t, app, token, "STUDENT_UPLOAD")
	alice := joinContest(t, app, joinCode, "Alice")

	status, env := do(t, app, withSession(multipartRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/submissions", contestID), map[string]string{
		"real_image": "real.png",
	}), alice))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", env.Code)
}

func TestTeacherUploadOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")
	contestID, _ := createContest(t, app, token, "TEACHER_UPLOAD")

	// Phase independence: uploads land even in RESULTS.
	setStatus(t, app, token, contestID, "RESULTS")

	status, env := do(t, app, authed(multipartRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/uploads", contestID), map[string]string{
		"ai_image":   "ai.png",
		"real_image": "real.png",
	}), token))
	require.Equal(t, http.StatusCreated, status)

	var uploaded struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &uploaded)

	// Generated AI half from a prompt.
	status, _ = do(t, app, authed(multipartRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/contests/%d/uploads", contestID), map[string]string{
		"ai_prompt":  "a fox painted by moonlight",
		"real_image": "real.png",
	}), token))
	require.Equal(t, http.StatusCreated, status)

	// And the teacher can remove a pair again.
	status, _ = do(t, app, authed(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/submissions/%d", uploaded.ID), nil), token))
	require.Equal(t, http.StatusOK, status)
}

func TestOwnershipDoesNotLeakAcrossTeachers(t *testing.T) {
	app, _ := newTestApp(t)

	owner := registerTeacher(t, app, "rivera@example.com")
	contestID, _ := createContest(t, app, owner, "STUDENT_UPLOAD")

	outsider := registerTeacher(t, app, "shaw@example.com")

	status, env := do(t, app, authed(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/contests/%d", contestID), nil), outsider))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", env.Code)

	status, _ = do(t, app, authed(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/contests/%d/status", contestID), fiber.Map{"status": "ENDED"}), outsider))
	require.Equal(t, http.StatusNotFound, status)
}

func TestInvalidIDParamRejected(t *testing.T) {
	app, _ := newTestApp(t)

	token := registerTeacher(t, app, "rivera@example.com")

	status, env := do(t, app, authed(httptest.NewRequest(http.MethodGet, "/api/v1/contests/banana", nil), token))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", env.Code)
}
