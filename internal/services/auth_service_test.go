package services

import (
	"github.com/yukikurage/assessment-api/internal/models"
)

func (suite *ServiceTestSuite) TestSignup_CreatesPersonalOrganization() {
	user, err := suite.auth.Signup(suite.ctx, SignupInput{
		Email:    "  Carol@Example.com ",
		Name:     "Carol",
		Password: "password123",
	})
	suite.Require().NoError(err)
	suite.Equal("carol@example.com", user.Email)
	suite.NotEqual("password123", user.PasswordHash)

	actor := suite.actor(user.ID)
	suite.Require().Len(actor.Memberships, 1)
	for orgID, roles := range actor.Memberships {
		suite.Equal([]models.OrganizationRole{models.RoleOwner}, roles)

		org, _, err := suite.orgs.GetOrganizationWithMembers(suite.ctx, actor, orgID)
		suite.Require().NoError(err)
		suite.Equal("Carol's organization", org.Name)
	}
}

func (suite *ServiceTestSuite) TestSignup_Validation() {
	_, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "x@example.com", Name: " ", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidName)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Email: "x@example.com", Name: "X", Password: "short"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Email: "OWNER@example.com", Name: "Dup", Password: "password123"})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *ServiceTestSuite) TestLogin() {
	_, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "dave@example.com", Name: "Dave", Password: "password123"})
	suite.Require().NoError(err)

	user, err := suite.auth.Login(suite.ctx, LoginInput{Email: "DAVE@example.com", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal("Dave", user.Name)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: "dave@example.com", Password: "wrong-password"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestLoadActor() {
	actor := suite.actor(suite.owner.ID)
	suite.Equal(suite.owner.ID, actor.UserID)
	suite.Equal([]models.GlobalRole{models.GlobalRoleUser}, actor.GlobalRoles)
	suite.Equal([]models.OrganizationRole{models.RoleOwner}, actor.Memberships[suite.org.ID])

	_, err := suite.auth.LoadActor(suite.ctx, 9999)
	suite.ErrorIs(err, ErrUserNotFound)
}
