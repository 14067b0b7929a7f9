package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/hukumu/core/group"
)

func TestGroupApi(t *testing.T) {
	ta := newTestApp(t)

	tests := []httpTest{
		{
			name:     "query: default only",
			method:   http.MethodGet,
			path:     "/api/groups",
			wantCode: http.StatusOK,
			wantData: marchallList(t, "default"),
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/api/groups",
			body:     marchallObj(t, group.NewGroup{Name: "cs-101"}),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"groupName":"cs-101","message":"Group 'cs-101' created successfully"}`),
		},
		{
			name:     "create: duplicate",
			method:   http.MethodPost,
			path:     "/api/groups",
			body:     marchallObj(t, group.NewGroup{Name: "cs-101"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "group already exists"}),
		},
		{
			name:     "create: invalid slug",
			method:   http.MethodPost,
			path:     "/api/groups",
			body:     []byte(`{"name":"cs 101!"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"only letters, numbers, hyphens, and underscores are allowed"}`),
		},
		{
			name:     "create: missing name",
			method:   http.MethodPost,
			path:     "/api/groups",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required"}`),
		},
		{
			name:     "query: sorted union",
			method:   http.MethodGet,
			path:     "/api/groups",
			wantCode: http.StatusOK,
			wantData: marchallList(t, "cs-101", "default"),
		},
		{
			name:     "email: unset reads null",
			method:   http.MethodGet,
			path:     "/api/groups/cs-101/email",
			wantCode: http.StatusOK,
			wantData: []byte(`{"groupName":"cs-101","email":null}`),
		},
		{
			name:     "email: configure",
			method:   http.MethodPut,
			path:     "/api/groups/cs-101/email",
			body:     marchallObj(t, group.Email{Email: "admin@test.cd"}),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"groupName":"cs-101","email":"admin@test.cd","message":"Email notifications configured for group 'cs-101'"}`),
		},
		{
			name:     "email: read back",
			method:   http.MethodGet,
			path:     "/api/groups/cs-101/email",
			wantCode: http.StatusOK,
			wantData: []byte(`{"groupName":"cs-101","email":"admin@test.cd"}`),
		},
		{
			name:     "email: invalid address",
			method:   http.MethodPut,
			path:     "/api/groups/cs-101/email",
			body:     marchallObj(t, group.Email{Email: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"email must be a valid email address"}`),
		},
		{
			name:     "email: disable",
			method:   http.MethodPut,
			path:     "/api/groups/cs-101/email",
			body:     []byte(`{"email":""}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"groupName":"cs-101","email":"","message":"Email notifications disabled for group 'cs-101'"}`),
		},
		{
			name:     "email: unknown group",
			method:   http.MethodGet,
			path:     "/api/groups/nope/email",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "group not found"}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/api/groups/cs-101",
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"message":"Group 'cs-101' deleted successfully"}`),
		},
		{
			name:     "delete: unknown group",
			method:   http.MethodDelete,
			path:     "/api/groups/cs-101",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "group not found"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestGroupApiDeleteConflicts(t *testing.T) {
	ta := newTestApp(t)
	if _, err := ta.groupSvc.Create(group.NewGroup{Name: "cs-101"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err := ta.teamSvc.Create(teamFixture("Alpha", "cs-101")); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tt := httpTest{
		name:     "delete: group has teams",
		method:   http.MethodDelete,
		path:     "/api/groups/cs-101",
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "cannot delete group with existing teams; remove teams first"}),
	}
	req, rec := newRequest(tt.method, tt.path)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
