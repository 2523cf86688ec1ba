package repository

import (
	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByMail(mail string) (*model.User, error) {
	var user model.User
	err := r.db.Where("mail = ?", mail).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByIDs(ids []int64) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByMail(mail string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("mail = ?", mail).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// DecrementQuackIfPositive 原子扣减 quack 配额。
// 条件更新保证并发下不会把计数扣成负数；返回是否扣减成功。
func (r *UserRepository) DecrementQuackIfPositive(id int64) (bool, error) {
	return r.decrementIfPositive(id, "remaining_quack_count")
}

// DecrementHateIfPositive 原子扣减 hate 配额
func (r *UserRepository) DecrementHateIfPositive(id int64) (bool, error) {
	return r.decrementIfPositive(id, "remaining_hate_count")
}

func (r *UserRepository) decrementIfPositive(id int64, column string) (bool, error) {
	res := r.db.Model(&model.User{}).
		Where("id = ? AND "+column+" > 0", id).
		Update(column, gorm.Expr(column+" - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetAllQuotas 把所有用户的两个配额计数重置为上限，返回受影响行数
func (r *UserRepository) ResetAllQuotas(limit int) (int64, error) {
	res := r.db.Model(&model.User{}).Where("1 = 1").Updates(map[string]interface{}{
		"remaining_quack_count": limit,
		"remaining_hate_count":  limit,
	})
	return res.RowsAffected, res.Error
}

// IncrementPopularity 人气 +1
func (r *UserRepository) IncrementPopularity(id int64) (bool, error) {
	res := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("popularity", gorm.Expr("popularity + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TopNByPopularity 按人气降序取前 N 名（同分按 id 升序，保证顺序稳定）
func (r *UserRepository) TopNByPopularity(n int) ([]model.User, error) {
	var users []model.User
	err := r.db.Order("popularity DESC, id ASC").Limit(n).Find(&users).Error
	return users, err
}
