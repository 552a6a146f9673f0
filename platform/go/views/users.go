package views

import "github.com/proptrack/proptrack/platform/go/entity"

// UsersUnavailable is shown instead of an empty table when the user backend cannot be reached.
const UsersUnavailable = "Could not load users."

type UserRow struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatarUrl"`
	Role      entity.Role `json:"role"`
}

type UserDirectory struct {
	Users List[UserRow] `json:"users"`
	Error string        `json:"error,omitempty"`
}

func ComposeUserDirectory(scope Scope, users []entity.User) UserDirectory {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: scope.assetURL(u.AvatarRef),
			Role:      u.Role,
		})
	}
	return UserDirectory{Users: newList(rows, EmptyUsers)}
}

// DegradedUserDirectory reports a failed backend read as a visible state rather than an empty list.
func DegradedUserDirectory() UserDirectory {
	return UserDirectory{Users: newList[UserRow](nil, EmptyUsers), Error: UsersUnavailable}
}
