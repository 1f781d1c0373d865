package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/auth"
	"hungrypanda/internal/core/blob"
	"hungrypanda/internal/core/cache"
	"hungrypanda/internal/domain"
	"hungrypanda/internal/repo"
	"hungrypanda/internal/repo/repotest"
	"hungrypanda/pkg/utils"
)

type fixture struct {
	store   *repo.Store
	images  *blob.Memory
	recipes *RecipeService
	users   *UserService
	jwt     *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	store := repotest.NewStore(t)
	images := blob.NewMemory()
	j := &auth.JWTer{Secret: []byte("test"), Issuer: "hungrypanda", TTL: time.Hour}
	return &fixture{
		store:   store,
		images:  images,
		recipes: NewRecipeService(store, images, nil, time.Minute, nil),
		users:   NewUserService(store, images, nil, j, nil),
		jwt:     j,
	}
}

func (f *fixture) image(t *testing.T, name string) string {
	t.Helper()
	ref, err := f.images.Put(context.Background(), blob.ImagePrefix+name, strings.NewReader(name), "image/png")
	require.NoError(t, err)
	return ref
}

func (f *fixture) signup(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), SignupInput{
		ProfileInput: ProfileInput{
			Name: name, Email: name + "@panda.io", UserName: name, Age: 30, Location: "Pune",
			Image: f.image(t, name+"-avatar.png"),
		},
		Password: "secret",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) recipe(t *testing.T, actor, name string) *domain.Recipe {
	t.Helper()
	rc, err := f.recipes.Create(context.Background(), actor, recipeInput(f.image(t, name+".png"), name))
	require.NoError(t, err)
	return rc
}

func recipeInput(image, name string) RecipeInput {
	return RecipeInput{
		Name:        name,
		Image:       image,
		CookTime:    domain.CookTime{Hours: 1, Minutes: 15},
		Description: "a warm bowl of comfort",
		KeyIngred:   []string{"lentils"},
		Ingredients: []string{"lentils", "turmeric", "salt"},
		Procedure:   "wash the lentils, boil with turmeric and salt until soft",
	}
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.store.Users().FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) get(t *testing.T, id string) *domain.Recipe {
	t.Helper()
	rc, err := f.store.Recipes().FindByID(context.Background(), id)
	require.NoError(t, err)
	return rc
}

func requireStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, gotMsg := apperr.Status(err)
	assert.Equal(t, status, gotStatus)
	assert.Equal(t, msg, gotMsg)
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, authorize("a", "a", "x"))
	requireStatus(t, authorize("a", "b", "not yours"), http.StatusNotFound, "not yours")
	requireStatus(t, authorize("", "", "not yours"), http.StatusNotFound, "not yours")
}

func TestLikeUnlikeScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")
	assert.Equal(t, 0, r.Likes)

	explore, err := f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)
	require.Len(t, explore, 1)
	assert.Equal(t, r.ID, explore[0].ID)

	got := f.get(t, r.ID)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{b.ID}, got.LikedBy)
	assert.Equal(t, []string{r.ID}, f.user(t, b.ID).LikedRecipes)

	_, err = f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)
	got = f.get(t, r.ID)
	assert.Equal(t, 0, got.Likes)
	assert.Empty(t, got.LikedBy)
	assert.Empty(t, f.user(t, b.ID).LikedRecipes)
}

func TestToggleSequenceKeepsCounterInSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b, c := f.signup(t, "amit"), f.signup(t, "bela"), f.signup(t, "chen")
	r := f.recipe(t, a.ID, "dal")

	for i, actor := range []string{b.ID, c.ID, b.ID, a.ID, c.ID, b.ID} {
		_, err := f.recipes.ToggleLike(ctx, actor, r.ID)
		require.NoError(t, err, i)
		got := f.get(t, r.ID)
		assert.Equal(t, len(got.LikedBy), got.Likes, i)
		for _, uid := range []string{a.ID, b.ID, c.ID} {
			inLikedBy := contains(got.LikedBy, uid)
			inLiked := contains(f.user(t, uid).LikedRecipes, r.ID)
			assert.Equal(t, inLikedBy, inLiked, "step %d user %s", i, uid)
		}
	}
}

func TestToggleLikeConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.signup(t, "amit")
	r := f.recipe(t, a.ID, "dal")
	var likers []string
	for _, n := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		likers = append(likers, f.signup(t, n).ID)
	}

	var wg sync.WaitGroup
	for _, id := range likers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.recipes.ToggleLike(ctx, id, r.ID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	got := f.get(t, r.ID)
	assert.Equal(t, len(likers), got.Likes)
	assert.ElementsMatch(t, likers, got.LikedBy)
}

func TestToggleLikeMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.signup(t, "amit")
	r := f.recipe(t, a.ID, "dal")

	_, err := f.recipes.ToggleLike(ctx, a.ID, "missing")
	requireStatus(t, err, http.StatusNotFound, "No such recipe exists!")

	_, err = f.recipes.ToggleLike(ctx, "ghost", r.ID)
	requireStatus(t, err, http.StatusNotFound, "No such user exists!")
	assert.Equal(t, 0, f.get(t, r.ID).Likes)
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.signup(t, "amit")
	in := recipeInput(f.image(t, "dal.png"), "dal")

	rc, err := f.recipes.Create(ctx, a.ID, in)
	require.NoError(t, err)

	v, err := f.recipes.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Name, v.Name)
	assert.Equal(t, in.Image, v.Image)
	assert.Equal(t, in.CookTime, v.CookTime)
	assert.Equal(t, in.Description, v.Description)
	assert.Equal(t, domain.StringList(in.KeyIngred), v.KeyIngred)
	assert.Equal(t, domain.StringList(in.Ingredients), v.Ingredients)
	assert.Equal(t, in.Procedure, v.Procedure)
	assert.Equal(t, a.ID, v.CreatorID)
	assert.Equal(t, 0, v.Likes)
	assert.Empty(t, v.LikedBy)
	require.NotNil(t, v.Creator)
	assert.Equal(t, "amit", v.Creator.UserName)

	u := f.user(t, a.ID)
	assert.Equal(t, 1, u.TotalRecipes)
	assert.Equal(t, []string{rc.ID}, u.Recipes)

	_, err = f.recipes.Get(ctx, "missing")
	requireStatus(t, err, http.StatusNotFound, "Can't find the requested recipe!")
}

func TestCreateForMissingActorRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.signup(t, "bela")

	_, err := f.recipes.Create(ctx, "ghost", recipeInput("images/x.png", "dal"))
	requireStatus(t, err, http.StatusNotFound, "No such user exists!")

	list, err := f.recipes.Explore(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")

	err := f.recipes.Update(ctx, b.ID, r.ID, recipeInput("", "hijacked"))
	requireStatus(t, err, http.StatusNotFound, "You are not authenticated to update this recipe")
	assert.Equal(t, "dal", f.get(t, r.ID).Name)

	err = f.recipes.Update(ctx, a.ID, "missing", recipeInput("", "x"))
	requireStatus(t, err, http.StatusNotFound, "Can't find the requested recipe!")
}

func TestUpdateReplacesContentAndReleasesOldImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")
	_, err := f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)

	// 不带新图：保留旧图
	in := recipeInput("", "dal tadka")
	require.NoError(t, f.recipes.Update(ctx, a.ID, r.ID, in))
	got := f.get(t, r.ID)
	assert.Equal(t, "dal tadka", got.Name)
	assert.Equal(t, r.Image, got.Image)
	assert.True(t, f.images.Has(r.Image))

	newImage := f.image(t, "tadka.png")
	in.Image = newImage
	in.CookTime = domain.CookTime{Hours: 0, Minutes: 45}
	require.NoError(t, f.recipes.Update(ctx, a.ID, r.ID, in))
	got = f.get(t, r.ID)
	assert.Equal(t, newImage, got.Image)
	assert.Equal(t, domain.CookTime{Hours: 0, Minutes: 45}, got.CookTime)
	assert.False(t, f.images.Has(r.Image))
	assert.True(t, f.images.Has(newImage))
	// 内容替换不影响点赞
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, a.ID, got.CreatorID)
}

func TestDeleteRecipeCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")
	keep := f.recipe(t, a.ID, "rice")
	_, err := f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)
	_, err = f.recipes.ToggleLike(ctx, b.ID, keep.ID)
	require.NoError(t, err)

	_, total, err := f.users.Profile(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, f.recipes.Delete(ctx, a.ID, r.ID))

	_, err = f.store.Recipes().FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{keep.ID}, f.user(t, b.ID).LikedRecipes)
	assert.False(t, f.images.Has(r.Image))

	owner, total, err := f.users.Profile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.TotalRecipes)
	assert.Equal(t, []string{keep.ID}, owner.Recipes)
	assert.EqualValues(t, 1, total)
}

func TestDeleteRecipeNotOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")

	err := f.recipes.Delete(ctx, b.ID, r.ID)
	requireStatus(t, err, http.StatusNotFound, "You are not authenticated to delete this recipe")
	assert.Equal(t, r.ID, f.get(t, r.ID).ID)
	assert.True(t, f.images.Has(r.Image))
	assert.Equal(t, 1, f.user(t, a.ID).TotalRecipes)
}

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, c := f.signup(t, "amit"), f.signup(t, "chen")
	r1, r2 := f.recipe(t, a.ID, "dal"), f.recipe(t, a.ID, "rice")
	cr := f.recipe(t, c.ID, "noodles")
	for _, id := range []string{r1.ID, r2.ID} {
		_, err := f.recipes.ToggleLike(ctx, c.ID, id)
		require.NoError(t, err)
	}
	_, err := f.recipes.ToggleLike(ctx, a.ID, cr.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.get(t, cr.ID).Likes)

	require.NoError(t, f.users.DeleteAccount(ctx, a.ID, nil))

	for _, id := range []string{r1.ID, r2.ID} {
		_, err := f.store.Recipes().FindByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	_, err = f.store.Users().FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, f.user(t, c.ID).LikedRecipes)
	got := f.get(t, cr.ID)
	assert.Equal(t, 0, got.Likes)
	assert.NotContains(t, got.LikedBy, a.ID)

	all, err := f.store.Recipes().ListExcludingCreator(ctx, "")
	require.NoError(t, err)
	for _, rc := range all {
		assert.NotEqual(t, a.ID, rc.CreatorID)
		assert.NotContains(t, rc.LikedBy, a.ID)
	}
	for _, ref := range []string{a.Image, r1.Image, r2.Image} {
		assert.False(t, f.images.Has(ref), ref)
	}
	assert.True(t, f.images.Has(c.Image))

	err = f.users.DeleteAccount(ctx, a.ID, nil)
	requireStatus(t, err, http.StatusNotFound, "No such user exists!")
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.signup(t, "amit")
	assert.Equal(t, domain.RoleUser, a.Role)
	assert.NotEqual(t, "secret", a.PasswordHash)

	_, err := f.users.Signup(ctx, SignupInput{
		ProfileInput: ProfileInput{Name: "x", Email: "AMIT@panda.io", UserName: "x", Location: "y"},
		Password:     "secret",
	})
	requireStatus(t, err, http.StatusConflict, "An user already exists with this email!")

	tok, uid, err := f.users.Login(ctx, "amit@panda.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, a.ID, uid)
	claims, err := f.jwt.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.UID)

	_, _, err = f.users.Login(ctx, "nobody@panda.io", "secret")
	requireStatus(t, err, http.StatusUnauthorized, "An user with such email is not found!")
	_, _, err = f.users.Login(ctx, "amit@panda.io", "wrong")
	requireStatus(t, err, http.StatusUnauthorized, "The password entered is incorrect!")
}

func TestEditProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	in := ProfileInput{Name: "Amit K", Email: "amit@panda.io", UserName: "amitk", Age: 31, Location: "Goa",
		SocialMedia: domain.SocialLinks{{Name: "insta", Value: "@amit", HasValue: true}}}

	err := f.users.EditProfile(ctx, b.ID, a.ID, in)
	requireStatus(t, err, http.StatusNotFound, "You are not authenticated to edit this profile")

	taken := in
	taken.Email = "bela@panda.io"
	err = f.users.EditProfile(ctx, a.ID, a.ID, taken)
	requireStatus(t, err, http.StatusConflict, "An user already exists with this email!")

	require.NoError(t, f.users.EditProfile(ctx, a.ID, a.ID, in))
	u := f.user(t, a.ID)
	assert.Equal(t, "Goa", u.Location)
	assert.Equal(t, 31, u.Age)
	assert.Equal(t, a.Image, u.Image)
	assert.Equal(t, in.SocialMedia, u.SocialMedia)

	in.Image = f.image(t, "new-avatar.png")
	require.NoError(t, f.users.EditProfile(ctx, a.ID, a.ID, in))
	assert.False(t, f.images.Has(a.Image))
	assert.Equal(t, in.Image, f.user(t, a.ID).Image)
}

func TestProfileAndLikedRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")
	_, err := f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)

	u, liked, err := f.users.LikedRecipes(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, u.ID)
	require.Len(t, liked, 1)
	assert.Equal(t, r.ID, liked[0].ID)

	_, _, err = f.users.Profile(ctx, "missing")
	requireStatus(t, err, http.StatusNotFound, "No such user exists!")

	_, err = f.recipes.ListByCreator(ctx, "missing")
	requireStatus(t, err, http.StatusBadRequest, "Can't find the recipes for the requested user!")
	mine, err := f.recipes.ListByCreator(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestReconcilerFixesDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.signup(t, "amit"), f.signup(t, "bela")
	r := f.recipe(t, a.ID, "dal")
	_, err := f.recipes.ToggleLike(ctx, b.ID, r.ID)
	require.NoError(t, err)

	// 人为制造漂移：计数错、悬挂点赞、孤儿菜谱
	require.NoError(t, f.store.Recipes().AdjustLikes(ctx, r.ID, 4))
	require.NoError(t, f.store.Users().AdjustTotalRecipes(ctx, a.ID, 2))
	_, err = f.store.Likes().Add(ctx, "ghost", r.ID)
	require.NoError(t, err)
	orphanImage := f.image(t, "orphan.png")
	require.NoError(t, f.store.Recipes().Create(ctx, &domain.Recipe{
		ID: "orphan", CreatorID: "ghost", Name: "lost", Image: orphanImage, Description: "nobody owns this", Procedure: "n/a",
	}))

	rep, err := NewReconciler(f.store, f.images, nil).Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.RemovedOrphans)
	assert.EqualValues(t, 1, rep.PrunedLikes)
	assert.EqualValues(t, 1, rep.FixedLikes)
	assert.EqualValues(t, 1, rep.FixedTotals)

	got := f.get(t, r.ID)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{b.ID}, got.LikedBy)
	assert.Equal(t, 1, f.user(t, a.ID).TotalRecipes)
	assert.False(t, f.images.Has(orphanImage))

	rep, err = NewReconciler(f.store, f.images, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
}

func TestLogoutWithoutCache(t *testing.T) {
	f := newFixture(t)
	assert.NotPanics(t, func() {
		f.users.Logout(context.Background(), nil)
		f.users.Logout(context.Background(), &auth.Claims{UID: "u"})
	})
}

func TestRenameRefreshesCachedRecipeView(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	f.recipes = NewRecipeService(f.store, f.images, c, time.Minute, nil)
	f.users = NewUserService(f.store, f.images, c, f.jwt, nil)
	ctx := context.Background()

	alice := f.signup(t, "alice")
	rc := f.recipe(t, alice.ID, "dal")

	v, err := f.recipes.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Creator.UserName)
	assert.True(t, mr.Exists("hp:"+recipeKey(rc.ID)))

	require.NoError(t, f.users.EditProfile(ctx, alice.ID, alice.ID, ProfileInput{
		Name: "Alice", Email: alice.Email, UserName: "chef-alice", Age: 31, Location: "Goa",
	}))
	assert.False(t, mr.Exists("hp:"+recipeKey(rc.ID)))

	v, err = f.recipes.Get(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef-alice", v.Creator.UserName)

	// 未改 userName 不动缓存
	require.NoError(t, f.users.EditProfile(ctx, alice.ID, alice.ID, ProfileInput{
		Name: "Alice B", Email: alice.Email, UserName: "chef-alice", Age: 31, Location: "Goa",
	}))
	assert.True(t, mr.Exists("hp:"+recipeKey(rc.ID)))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
