package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josoro11/FOXITE-V2/internal/config"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

type companyEnv struct {
	svc       *CompanyService
	orgs      *fakeOrgRepo
	companies *fakeCompanyRepo
	endUsers  *fakeEndUserRepo
	org       *domain.Organization
}

func newCompanyEnv(t *testing.T, tier domain.PlanTier) *companyEnv {
	t.Helper()
	env := &companyEnv{
		orgs:      newFakeOrgRepo(),
		companies: newFakeCompanyRepo(),
		endUsers:  newFakeEndUserRepo(),
	}
	env.org = &domain.Organization{
		Name:     "Acme MSP",
		PlanTier: tier,
		Status:   domain.OrgStatusActive,
	}
	require.NoError(t, env.orgs.Create(context.Background(), env.org))

	cfg := config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	env.svc = NewCompanyService(cfg, CompanyDependencies{
		OrgRepo:     env.orgs,
		CompanyRepo: env.companies,
		EndUserRepo: env.endUsers,
		Guard:       plan.NewGuard(plan.Default()),
	})
	return env
}

func (env *companyEnv) addCompany(t *testing.T, name string) *domain.ClientCompany {
	t.Helper()
	company, err := env.svc.CreateCompany(context.Background(), env.org.ID, CompanyCreateInput{Name: name})
	require.NoError(t, err)
	return company
}

func TestCreateCompanyEnforcesPlanCeiling(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierCore)
	limit := plan.Default().LimitFor(domain.PlanTierCore, plan.ResourceClientCompanies)
	require.NotNil(t, limit)

	for i := 0; i < *limit; i++ {
		env.addCompany(t, "Client "+strconv.Itoa(i))
	}

	_, err := env.svc.CreateCompany(context.Background(), env.org.ID, CompanyCreateInput{Name: "Eleventh"})
	var limitErr *plan.PlanLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, plan.ResourceClientCompanies, limitErr.Resource)
}

func TestCreateCompanyScaleTierIsUnlimited(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierScale)

	for i := 0; i < 300; i++ {
		env.addCompany(t, "Client "+strconv.Itoa(i))
	}
}

func TestCreateCompanyNormalizesContact(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierPlus)

	company, err := env.svc.CreateCompany(context.Background(), env.org.ID, CompanyCreateInput{
		Name:         "  Globex  ",
		ContactEmail: " Ops@Globex.Example ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Globex", company.Name)
	assert.Equal(t, "ops@globex.example", company.ContactEmail)
	assert.True(t, company.IsActive)
}

func TestCreateEndUserRequiresActiveCompany(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierPlus)
	company := env.addCompany(t, "Globex")
	company.IsActive = false
	require.NoError(t, env.companies.Update(context.Background(), company))

	_, err := env.svc.CreateEndUser(context.Background(), env.org.ID, EndUserCreateInput{
		CompanyID: company.ID, Name: "Pat", Email: "pat@globex.example", Password: "secret123",
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestCreateEndUserDuplicateEmail(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierPlus)
	company := env.addCompany(t, "Globex")

	user, err := env.svc.CreateEndUser(context.Background(), env.org.ID, EndUserCreateInput{
		CompanyID: company.ID, Name: "Pat", Email: "Pat@Globex.Example", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "pat@globex.example", user.Email)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	_, err = env.svc.CreateEndUser(context.Background(), env.org.ID, EndUserCreateInput{
		CompanyID: company.ID, Name: "Pat Again", Email: "pat@globex.example", Password: "secret123",
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestUpdateCompanyRejectsForeignOrganization(t *testing.T) {
	env := newCompanyEnv(t, domain.PlanTierPlus)
	company := env.addCompany(t, "Globex")
	company.OrganizationID = "org-other"

	_, err := env.svc.UpdateCompany(context.Background(), env.org.ID, company)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}
